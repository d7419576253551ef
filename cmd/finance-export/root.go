package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/melking/melking-bfa-go/internal/app"
	"github.com/melking/melking-bfa-go/internal/config"
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/export"
	"github.com/melking/melking-bfa-go/internal/infra/observability"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "MELKING"

// cli carries the state shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
	getenv  func(string) string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), getenv: os.Getenv}

	cmd := &cobra.Command{
		Use:   "finance-export",
		Short: "Export building finance reports to Excel",
		Long: `finance-export fetches a building's ledger or its unit debt/credit list from
the building-management API and writes the same workbook the BFA serves.

Settings come from flags, MELKING_* environment variables, an optional YAML
config file, and finally the server's own environment variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initConfig,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (yaml)")
	pf.String("token", "", "access token identifying the caller")
	pf.String("backend-url", "", "building-management API base URL")
	pf.String("catalog-file", "", "expense-type catalog JSON file")
	pf.String("catalog-db", "", "expense-type catalog SQLite file")
	pf.String("timezone", "", "timezone for civil-day filters")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.StringP("out", "o", ".", "directory the workbook is written to")

	for key, flag := range map[string]string{
		"token":           "token",
		"backend_api_url": "backend-url",
		"catalog_file":    "catalog-file",
		"catalog_db_path": "catalog-db",
		"timezone":        "timezone",
		"log_level":       "log-level",
		"out":             "out",
	} {
		_ = c.v.BindPFlag(key, pf.Lookup(flag))
	}

	cmd.AddCommand(transactionsCmd(c))
	cmd.AddCommand(debtCreditCmd(c))
	return cmd
}

func (c *cli) initConfig(_ *cobra.Command, _ []string) error {
	c.v.SetEnvPrefix(envPrefix)
	c.v.AutomaticEnv()

	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// lookup resolves a configuration key through viper, then the plain
// environment the server reads.
func (c *cli) lookup(key string) string {
	if v := c.v.GetString(key); v != "" {
		return v
	}
	return c.getenv(key)
}

// session is a wired App plus the caller context every service call needs.
type session struct {
	app    *app.App
	cfg    *config.Config
	logger *zap.Logger
	ctx    context.Context
}

func (s *session) close() {
	_ = s.app.Close()
	_ = s.logger.Sync()
}

func (c *cli) open(ctx context.Context) (*session, error) {
	cfg := config.LoadFrom(c.lookup)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := observability.NewLogger(cfg.LogLevel)

	a, err := app.New(cfg, observability.NewMetrics(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to wire services: %w", err)
	}

	token := c.v.GetString("token")
	if token == "" {
		_ = a.Close()
		return nil, errors.New("an access token is required (--token or MELKING_TOKEN)")
	}
	caller, err := a.Verifier.Verify(token)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	logger.Debug("caller resolved", zap.String("user_id", caller.UserID), zap.String("role", caller.Role))

	return &session{
		app:    a,
		cfg:    cfg,
		logger: logger,
		ctx:    domain.WithCaller(ctx, *caller),
	}, nil
}

// save writes f into the output directory and reports where it went.
func (c *cli) save(cmd *cobra.Command, f *export.File) error {
	dir := c.v.GetString("out")
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, f.Name)
	if err := os.WriteFile(path, f.Content, 0o644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows)\n", path, f.Rows)
	return err
}

// describeError prefers the Persian message carried by user-facing errors.
func describeError(err error) string {
	var validation *domain.ErrValidation
	var forbidden *domain.ErrForbidden
	var noUnit *domain.ErrNoOwnUnit
	var empty *domain.ErrNothingToExport
	var unauthorized *domain.ErrUnauthorized

	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &unauthorized):
		return unauthorized.Error()
	case errors.As(err, &forbidden):
		return "شما به این بخش دسترسی ندارید"
	case errors.As(err, &noUnit):
		return "واحدی برای شما یافت نشد"
	case errors.As(err, &empty):
		return "داده‌ای برای خروجی وجود ندارد"
	default:
		return err.Error()
	}
}
