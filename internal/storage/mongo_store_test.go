package storage_test

import (
	"context"
	"testing"

	"github.com/fjod/shopdesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupMongo(t *testing.T) *storage.MongoStore {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := storage.ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	store := storage.NewMongoStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMongoStore_RoundTrip(t *testing.T) {
	store := setupMongo(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "isAuthenticated")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Set(ctx, "isAuthenticated", "true"))
	v, err := store.Get(ctx, "isAuthenticated")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	require.NoError(t, store.Set(ctx, "isAuthenticated", "false"))
	v, err = store.Get(ctx, "isAuthenticated")
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	require.NoError(t, store.Delete(ctx, "isAuthenticated"))
	_, err = store.Get(ctx, "isAuthenticated")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
