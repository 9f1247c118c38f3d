package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/fjod/shopdesk/internal/domain"
	"github.com/fjod/shopdesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errWriteFailed = errors.New("disk full")

// failingStore lets reads through and fails writes on demand
type failingStore struct {
	*storage.MemoryStore
	failSet bool
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errWriteFailed
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T, kv storage.Store) *Store {
	s := New(kv, discardLogger())
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("p-%d", seq)
	}
	require.NoError(t, s.Load(context.Background()))
	return s
}

func ptr[T any](v T) *T { return &v }

func TestLoad_EmptyStorage_SeedsAndPersists(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := setupStore(t, kv)

	products := s.List()
	require.Len(t, products, 6)
	assert.Equal(t, "Rice", products[0].Name)
	assert.Equal(t, 60.0, products[0].Price)
	assert.Equal(t, domain.UnitKg, products[0].Unit)
	assert.Equal(t, 100.0, products[0].Stock)

	raw, err := kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	var persisted []domain.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, products, persisted)
}

func TestLoad_MalformedData_FallsBackToSeedAndLogs(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), StorageKey, `[{"id":"1","name":`))

	var logs bytes.Buffer
	s := New(kv, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, domain.SeedProducts(), s.List())
	assert.Contains(t, logs.String(), "malformed")

	// The unreadable value is kept until the next mutation overwrites it
	raw, err := kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1","name":`, raw)
}

func TestLoad_EmptyArray_StaysEmpty(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), StorageKey, `[]`))

	s := setupStore(t, kv)
	assert.Empty(t, s.List())
}

func TestLoad_StorageError(t *testing.T) {
	s := New(&brokenStore{storage.NewMemoryStore()}, discardLogger())

	err := s.Load(context.Background())
	assert.ErrorIs(t, err, errWriteFailed)
}

type brokenStore struct{ *storage.MemoryStore }

func (brokenStore) Get(context.Context, string) (string, error) { return "", errWriteFailed }

func TestAdd_AssignsIDAndAppends(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	p, err := s.Add(context.Background(), domain.ProductInput{
		Name: "  Salt ", Price: 20, Unit: domain.UnitKg, Category: "Grocery", Stock: 25,
	})
	require.NoError(t, err)

	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, "Salt", p.Name)
	products := s.List()
	require.Len(t, products, 7)
	assert.Equal(t, p, products[6])
}

func TestAdd_DefaultIDsAreUnique(t *testing.T) {
	s := New(storage.NewMemoryStore(), discardLogger())
	require.NoError(t, s.Load(context.Background()))

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		p, err := s.Add(context.Background(), domain.ProductInput{Name: "Item", Price: 1, Unit: domain.UnitPiece})
		require.NoError(t, err)
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestAdd_ClampsNegativeStock(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	p, err := s.Add(context.Background(), domain.ProductInput{Name: "Salt", Price: 20, Unit: domain.UnitKg, Stock: -4})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Stock)
}

func TestAdd_Validation(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	cases := map[string]domain.ProductInput{
		"empty name":   {Name: " ", Price: 10, Unit: domain.UnitKg},
		"zero price":   {Name: "Salt", Price: 0, Unit: domain.UnitKg},
		"negative":     {Name: "Salt", Price: -5, Unit: domain.UnitKg},
		"unknown unit": {Name: "Salt", Price: 5, Unit: "bushel"},
		"missing unit": {Name: "Salt", Price: 5},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Add(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		})
	}
	assert.Len(t, s.List(), 6)
}

func TestAdd_PersistFailure_LeavesCatalogUnchanged(t *testing.T) {
	kv := &failingStore{MemoryStore: storage.NewMemoryStore()}
	s := setupStore(t, kv)

	kv.failSet = true
	_, err := s.Add(context.Background(), domain.ProductInput{Name: "Salt", Price: 20, Unit: domain.UnitKg})
	assert.ErrorIs(t, err, errWriteFailed)
	assert.Len(t, s.List(), 6)
}

func TestUpdate_MergesGivenFields(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	p, err := s.Update(context.Background(), "1", domain.ProductPatch{Price: ptr(65.0), Stock: ptr(80.0)})
	require.NoError(t, err)

	assert.Equal(t, "1", p.ID)
	assert.Equal(t, "Rice", p.Name)
	assert.Equal(t, 65.0, p.Price)
	assert.Equal(t, 80.0, p.Stock)
	assert.Equal(t, "Grains", p.Category)

	got, err := s.Get("1")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestUpdate_ClampsStockAtZero(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	p, err := s.Update(context.Background(), "2", domain.ProductPatch{Stock: ptr(-10.0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Stock)
}

func TestUpdate_NotFound(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	_, err := s.Update(context.Background(), "missing", domain.ProductPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, domain.SeedProducts(), s.List())
}

func TestUpdate_RejectsInvalidPrice(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	_, err := s.Update(context.Background(), "1", domain.ProductPatch{Price: ptr(0.0)})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	p, _ := s.Get("1")
	assert.Equal(t, 60.0, p.Price)
}

func TestRemove(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	require.NoError(t, s.Remove(context.Background(), "3"))

	_, err := s.Get("3")
	assert.ErrorIs(t, err, ErrProductNotFound)
	products := s.List()
	require.Len(t, products, 5)
	assert.Equal(t, []string{"1", "2", "4", "5", "6"}, ids(products))

	assert.ErrorIs(t, s.Remove(context.Background(), "3"), ErrProductNotFound)
}

func TestPersistedCollection_RoundTrips(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := setupStore(t, kv)
	ctx := context.Background()

	salt, err := s.Add(ctx, domain.ProductInput{Name: "Salt", Price: 20, Unit: domain.UnitKg, Category: "Grocery", Stock: 12.5})
	require.NoError(t, err)
	_, err = s.Add(ctx, domain.ProductInput{Name: "Eggs", Price: 6, Unit: domain.UnitPiece, Category: "Dairy", Stock: 120})
	require.NoError(t, err)
	_, err = s.Update(ctx, salt.ID, domain.ProductPatch{Category: ptr("Spices"), Unit: ptr(domain.UnitGram)})
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, "2"))
	_, err = s.Update(ctx, "4", domain.ProductPatch{Stock: ptr(39.75)})
	require.NoError(t, err)

	reloaded := setupStore(t, kv)
	assert.Equal(t, s.List(), reloaded.List())
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	assert.Equal(t, []string{"1", "5"}, ids(s.Search("RI")))
	assert.Equal(t, []string{"6"}, ids(s.Search("flour")))
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids(s.Search("")))
	assert.Empty(t, s.Search("chocolate"))
}

func TestLowStock(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())
	_, err := s.Update(context.Background(), "3", domain.ProductPatch{Stock: ptr(4.0)})
	require.NoError(t, err)

	assert.Equal(t, []string{"3"}, ids(s.LowStock(10)))
	assert.Equal(t, []string{"3", "5"}, ids(s.LowStock(20)))
	assert.Empty(t, s.LowStock(0))
}

func TestSubscribe_NotifiedAfterMutation(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	var got [][]domain.Product
	unsubscribe := s.Subscribe(func(products []domain.Product) {
		got = append(got, products)
		// listeners may read the store without deadlocking
		_ = s.List()
	})

	_, err := s.Update(context.Background(), "1", domain.ProductPatch{Stock: ptr(99.0)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 99.0, got[0][0].Stock)

	unsubscribe()
	require.NoError(t, s.Remove(context.Background(), "1"))
	assert.Len(t, got, 1)
}

func TestSubscribe_NotNotifiedOnFailedMutation(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	calls := 0
	s.Subscribe(func([]domain.Product) { calls++ })

	_, err := s.Update(context.Background(), "missing", domain.ProductPatch{})
	assert.Error(t, err)
	assert.Zero(t, calls)
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestDecrementStock_AppliesAllAndClamps(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := setupStore(t, kv)

	missing, err := s.DecrementStock(context.Background(), map[string]float64{"1": 5, "2": 80, "3": 0.5})
	require.NoError(t, err)
	assert.Empty(t, missing)

	rice, _ := s.Get("1")
	sugar, _ := s.Get("2")
	dal, _ := s.Get("3")
	assert.Equal(t, 95.0, rice.Stock)
	assert.Equal(t, 0.0, sugar.Stock)
	assert.Equal(t, 29.5, dal.Stock)

	reloaded := setupStore(t, kv)
	assert.Equal(t, s.List(), reloaded.List())
}

func TestDecrementStock_ReportsMissingProducts(t *testing.T) {
	s := setupStore(t, storage.NewMemoryStore())

	missing, err := s.DecrementStock(context.Background(), map[string]float64{"1": 1, "gone": 2, "also-gone": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"also-gone", "gone"}, missing)

	rice, _ := s.Get("1")
	assert.Equal(t, 99.0, rice.Stock)
}

func TestDecrementStock_PersistFailure_ChangesNothing(t *testing.T) {
	kv := &failingStore{MemoryStore: storage.NewMemoryStore()}
	s := setupStore(t, kv)
	notified := 0
	s.Subscribe(func([]domain.Product) { notified++ })

	kv.failSet = true
	_, err := s.DecrementStock(context.Background(), map[string]float64{"1": 1, "2": 1})
	assert.ErrorIs(t, err, errWriteFailed)

	rice, _ := s.Get("1")
	sugar, _ := s.Get("2")
	assert.Equal(t, 100.0, rice.Stock)
	assert.Equal(t, 50.0, sugar.Stock)
	assert.Zero(t, notified)
}
