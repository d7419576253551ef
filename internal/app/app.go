// Package app wires the services from configuration. The HTTP server and the
// export CLI share it.
package app

import (
	"fmt"
	"net/http"

	"github.com/melking/melking-bfa-go/internal/config"
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/export"
	"github.com/melking/melking-bfa-go/internal/infra/cache"
	"github.com/melking/melking-bfa-go/internal/infra/catalogstore"
	"github.com/melking/melking-bfa-go/internal/infra/client"
	"github.com/melking/melking-bfa-go/internal/infra/observability"
	"github.com/melking/melking-bfa-go/internal/infra/resilience"
	"github.com/melking/melking-bfa-go/internal/port"
	"github.com/melking/melking-bfa-go/internal/service"

	"go.uber.org/zap"
)

// App holds the wired services.
type App struct {
	Finance    *service.FinanceService
	DebtCredit *service.DebtCreditService
	Catalog    *service.CatalogService
	Legal      *service.LegalService
	Verifier   *service.TokenVerifier

	closers []func() error
}

// Close releases the catalog store and the session cache.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// New builds every service from cfg.
func New(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (*App, error) {
	a := &App{}
	loc := cfg.Location()

	// --- Catalog store ---
	var store port.CatalogStore
	if cfg.CatalogDBPath != "" {
		s, err := catalogstore.NewSQLiteStore(cfg.CatalogDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("catalog store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		store = s
		logger.Info("expense-type catalog in SQLite", zap.String("path", cfg.CatalogDBPath))
	} else {
		store = catalogstore.NewFileStore(cfg.CatalogFile, logger)
		logger.Info("expense-type catalog in JSON file", zap.String("path", cfg.CatalogFile))
	}

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	billing := client.NewBillingClient(httpClient, cfg.BackendAPIURL,
		resilience.NewCircuitBreaker("billing", client.BreakerSuccess), resilienceCfg, logger)
	legalAI := client.NewLegalAIClient(httpClient, cfg.LegalAIURL,
		resilience.NewCircuitBreaker("legal_ai", client.BreakerSuccess), resilienceCfg, logger)

	// --- Session cache ---
	ledgers := cache.New[[]domain.Transaction](cfg.CacheTTL)
	a.closers = append(a.closers, func() error { ledgers.Close(); return nil })

	// --- Services ---
	exporter := export.NewExporter(billing, cfg.MaxConcurrency, loc, metrics, logger)
	a.Catalog = service.NewCatalogService(store, logger)
	a.Finance = service.NewFinanceService(billing, ledgers, a.Catalog, exporter, loc, cfg.MaxAttachmentBytes, metrics, logger)
	a.DebtCredit = service.NewDebtCreditService(billing, exporter, cfg.CacheTTL, metrics, logger)
	a.Legal = service.NewLegalService(legalAI, metrics, logger)
	a.Verifier = service.NewTokenVerifier(cfg.JWTSecret)
	return a, nil
}
