package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// DevJWTSecret is the secret used when JWT_SECRET is unset. Tokens signed
// with it are only fit for local development.
const DevJWTSecret = "melking-dev-secret-change-me"

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Backend services
	BackendAPIURL string // building-management REST API (…/api/v1)
	LegalAIURL    string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int // allocation fetches in flight per export

	// Session cache for ledgers and debt/credit views
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Auth
	JWTSecret string

	// Expense-type catalog storage: SQLite file when CatalogDBPath is set,
	// otherwise a JSON file at CatalogFile.
	CatalogDBPath string
	CatalogFile   string

	// Civil-day arithmetic and Jalali dates
	Timezone string

	// Expense attachments
	MaxAttachmentBytes int64
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return LoadFrom(os.Getenv)
}

// LoadFrom builds the configuration from an arbitrary key lookup, so the
// CLI can feed values resolved by its own flag/env layer.
func LoadFrom(get func(string) string) *Config {
	e := env{get: get}
	return &Config{
		Port:     e.num("PORT", 8080),
		LogLevel: e.str("LOG_LEVEL", "info"),

		BackendAPIURL: e.str("BACKEND_API_URL", "http://localhost:8000/api/v1"),
		LegalAIURL:    e.str("LEGAL_AI_URL", "http://localhost:8000/api/v1"),

		HTTPTimeout: e.dur("HTTP_TIMEOUT", 15*time.Second),

		MaxRetries:     e.num("MAX_RETRIES", 0),
		InitialBackoff: e.dur("INITIAL_BACKOFF", 200*time.Millisecond),
		MaxConcurrency: e.num("MAX_CONCURRENCY", 8),

		CacheTTL: e.dur("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: e.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		JWTSecret: e.str("JWT_SECRET", DevJWTSecret),

		CatalogDBPath: e.str("CATALOG_DB_PATH", ""),
		CatalogFile:   e.str("CATALOG_FILE", "data/expense_types.json"),

		Timezone: e.str("TIMEZONE", "Asia/Tehran"),

		MaxAttachmentBytes: int64(e.num("MAX_ATTACHMENT_BYTES", 10<<20)),
	}
}

// Validate reports every setting that cannot work, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	for name, raw := range map[string]string{"BACKEND_API_URL": c.BackendAPIURL, "LEGAL_AI_URL": c.LegalAIURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s: not an absolute URL: %q", name, raw))
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: out of range: %d", c.Port))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("MAX_RETRIES: must not be negative: %d", c.MaxRetries))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENCY: must be at least 1: %d", c.MaxConcurrency))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT: must be positive: %s", c.HTTPTimeout))
	}
	if c.MaxAttachmentBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_ATTACHMENT_BYTES: must be positive: %d", c.MaxAttachmentBytes))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET: must not be empty"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, falling back to Asia/Tehran.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	loc, err := time.LoadLocation("Asia/Tehran")
	if err != nil {
		return time.FixedZone("IRST", 3*3600+1800)
	}
	return loc
}

type env struct {
	get func(string) string
}

func (e env) str(key, fallback string) string {
	if v := e.get(key); v != "" {
		return v
	}
	return fallback
}

func (e env) num(key string, fallback int) int {
	if v := e.get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func (e env) dur(key string, fallback time.Duration) time.Duration {
	if v := e.get(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
