package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/melking/melking-bfa-go/internal/app"
	"github.com/melking/melking-bfa-go/internal/config"
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/infra/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func configWith(values map[string]string) *config.Config {
	return config.LoadFrom(func(k string) string { return values[k] })
}

func TestNew_FileCatalog(t *testing.T) {
	dir := t.TempDir()
	cfg := configWith(map[string]string{"CATALOG_FILE": filepath.Join(dir, "types.json")})

	a, err := app.New(cfg, observability.NewMetrics(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	added, err := a.Catalog.AddExpenseType(context.Background(), domain.ExpenseType{Label: "Pool"})
	require.NoError(t, err)
	assert.Equal(t, "custom_pool", added.Value)
	assert.FileExists(t, filepath.Join(dir, "types.json"))
}

func TestNew_SQLiteCatalog(t *testing.T) {
	dir := t.TempDir()
	cfg := configWith(map[string]string{"CATALOG_DB_PATH": filepath.Join(dir, "catalog.db")})

	a, err := app.New(cfg, observability.NewMetrics(), zap.NewNop())
	require.NoError(t, err)

	_, err = a.Catalog.AddExpenseType(context.Background(), domain.ExpenseType{Label: "Pool"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// a second process sees the stored type
	b, err := app.New(cfg, observability.NewMetrics(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	types, err := b.Catalog.ListExpenseTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "custom_pool", types[len(types)-1].Value)
}
