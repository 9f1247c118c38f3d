package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fjod/shopdesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *storage.SQLiteStore {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.RunMigrations("./migrations/sqlite"))
	return store
}

func TestSQLiteStore_SetAndGet(t *testing.T) {
	store := setupSQLite(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	require.NoError(t, store.Set(ctx, "products", `[{"id":"1"}]`))

	v, err := store.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, v)
}

func TestSQLiteStore_Upsert(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "products", "old"))
	require.NoError(t, store.Set(ctx, "products", "new"))

	v, err := store.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestSQLiteStore_Get_NotFound(t *testing.T) {
	store := setupSQLite(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "isAuthenticated", "true"))
	require.NoError(t, store.Delete(ctx, "isAuthenticated"))

	_, err := store.Get(ctx, "isAuthenticated")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLiteStore_MigrationsAreIdempotent(t *testing.T) {
	store := setupSQLite(t)

	assert.NoError(t, store.RunMigrations("./migrations/sqlite"))
}
