package catalogstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/taxonomy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type storeUnderTest interface {
	backend
	Load(ctx context.Context) ([]domain.ExpenseType, error)
	Save(ctx context.Context, types []domain.ExpenseType) error
}

func stores(t *testing.T) map[string]storeUnderTest {
	return map[string]storeUnderTest{
		"sqlite": createTestSQLiteStore(t),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "data", "expense_types.json"), zap.NewNop()),
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	gym := domain.ExpenseType{Value: "custom_gym", Label: "باشگاه"}

	for name, store := range stores(t) {
		t.Run(name+"/empty", func(t *testing.T) {
			types, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, types)
		})

		t.Run(name+"/round trip", func(t *testing.T) {
			require.NoError(t, store.Save(ctx, []domain.ExpenseType{gym}))
			types, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.ExpenseType{gym}, types)
		})

		t.Run(name+"/save purges sentinel", func(t *testing.T) {
			require.NoError(t, store.Save(ctx, []domain.ExpenseType{gym, {Value: taxonomy.Sentinel, Label: "افزودن"}}))
			raw, err := store.get(ctx)
			require.NoError(t, err)
			assert.NotContains(t, string(raw), taxonomy.Sentinel)
		})

		t.Run(name+"/load purges legacy sentinel and rewrites", func(t *testing.T) {
			legacy := `[{"value":"custom_gym","label":"باشگاه"},{"value":"AddExpenseType","label":"+ افزودن"}]`
			require.NoError(t, store.put(ctx, []byte(legacy)))

			types, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.ExpenseType{gym}, types)

			raw, err := store.get(ctx)
			require.NoError(t, err)
			assert.NotContains(t, string(raw), taxonomy.Sentinel)
		})

		t.Run(name+"/corrupt document is cleared", func(t *testing.T) {
			require.NoError(t, store.put(ctx, []byte(`{not json`)))

			types, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, types)

			raw, err := store.get(ctx)
			require.NoError(t, err)
			assert.Nil(t, raw)
		})

		t.Run(name+"/malformed entries are dropped one by one", func(t *testing.T) {
			stored := `[
				{"value":"custom_gym","label":"باشگاه"},
				{"value":"custom_pool","label":null},
				{"value":"","label":"بی‌نام"},
				"custom_roof",
				{"value":"AddExpenseType","label":"+ افزودن"}
			]`
			require.NoError(t, store.put(ctx, []byte(stored)))

			types, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.ExpenseType{gym}, types)

			raw, err := store.get(ctx)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"value":"custom_gym","label":"باشگاه"}]`, string(raw))
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		types, dropped, err := Decode([]byte(`[{"value":"custom_a","label":"A"}]`))
		require.NoError(t, err)
		assert.Len(t, types, 1)
		assert.Zero(t, dropped)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, _, err := Decode([]byte(`{"value":"custom_a"}`))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("missing label drops only that entry", func(t *testing.T) {
		types, dropped, err := Decode([]byte(`[{"value":"custom_a"},{"value":"custom_b","label":"B"}]`))
		require.NoError(t, err)
		assert.Equal(t, []domain.ExpenseType{{Value: "custom_b", Label: "B"}}, types)
		assert.Equal(t, 1, dropped)
	})
}

func TestFileStore_WritesNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "expense_types.json"), zap.NewNop())
	require.NoError(t, store.Save(context.Background(), []domain.ExpenseType{{Value: "custom_a", Label: "A"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
