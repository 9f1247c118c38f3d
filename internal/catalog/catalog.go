package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/fjod/shopdesk/internal/domain"
	"github.com/fjod/shopdesk/internal/storage"
	"github.com/google/uuid"
)

// StorageKey is where the full product collection is persisted as a JSON array
const StorageKey = "products"

// Listener receives a snapshot of the catalog after every committed mutation
type Listener func(products []domain.Product)

// Store owns the product collection. It is the only writer of products:
// every mutation is persisted before it becomes visible in memory.
type Store struct {
	mu       sync.Mutex
	kv       storage.Store
	logger   *slog.Logger
	products []domain.Product

	listeners map[int]Listener
	nextSubID int
	newID     func() string
}

func New(kv storage.Store, logger *slog.Logger) *Store {
	return &Store{
		kv:        kv,
		logger:    logger,
		products:  []domain.Product{},
		listeners: make(map[int]Listener),
		newID:     func() string { return uuid.New().String() },
	}
}

// Load rehydrates the catalog from storage. A missing collection is replaced by the seed
// catalog and persisted; an unreadable one is logged and replaced by the seed in memory only.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		seed := domain.SeedProducts()
		if err := s.persist(ctx, seed); err != nil {
			return err
		}
		s.products = seed
		s.logger.Info("catalog seeded", "products", len(seed))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		s.logger.Error("persisted catalog is malformed, falling back to seed", "error", err)
		s.products = domain.SeedProducts()
		return nil
	}
	if products == nil {
		products = []domain.Product{}
	}
	s.products = products
	s.logger.Info("catalog loaded", "products", len(products))
	return nil
}

// List returns all products in insertion order
func (s *Store) List() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Get(id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Product{}, ErrProductNotFound
	}
	return s.products[i], nil
}

// Search returns the products whose name contains term, ignoring case.
// An empty term matches everything.
func (s *Store) Search(term string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(term))

	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			result = append(result, p)
		}
	}
	return result
}

// LowStock returns the products whose stock is below threshold
func (s *Store) LowStock(threshold float64) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []domain.Product{}
	for _, p := range s.products {
		if p.Stock < threshold {
			result = append(result, p)
		}
	}
	return result
}

// Add assigns a fresh id to the new product, appends and persists it
func (s *Store) Add(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	p := domain.Product{
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		Unit:     in.Unit,
		Category: in.Category,
		Stock:    math.Max(0, in.Stock),
	}
	if err := validate(p); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	p.ID = s.newID()
	next := append(s.snapshot(), p)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return domain.Product{}, err
	}
	s.products = next
	s.mu.Unlock()

	s.notify()
	return p, nil
}

// Update merges patch into the product with the given id and persists the collection
func (s *Store) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Product{}, ErrProductNotFound
	}

	next := s.snapshot()
	updated := next[i]
	patch.Apply(&updated)
	updated.Name = strings.TrimSpace(updated.Name)
	if err := validate(updated); err != nil {
		s.mu.Unlock()
		return domain.Product{}, err
	}
	next[i] = updated

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return domain.Product{}, err
	}
	s.products = next
	s.mu.Unlock()

	s.notify()
	return updated, nil
}

// DecrementStock subtracts each quantity from the matching product's stock, clamped at 0,
// and persists the whole change in one write. Either every decrement is committed or none is.
// Ids with no matching product are skipped and returned.
func (s *Store) DecrementStock(ctx context.Context, quantities map[string]float64) ([]string, error) {
	var missing []string

	s.mu.Lock()
	next := s.snapshot()
	for id, qty := range quantities {
		i := s.indexOf(id)
		if i < 0 {
			missing = append(missing, id)
			continue
		}
		next[i].Stock = math.Max(0, next[i].Stock-qty)
	}
	slices.Sort(missing)

	if len(missing) == len(quantities) {
		s.mu.Unlock()
		return missing, nil
	}
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.products = next
	s.mu.Unlock()

	s.notify()
	return missing, nil
}

// Remove deletes the product with the given id and persists the collection
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrProductNotFound
	}

	next := make([]domain.Product, 0, len(s.products)-1)
	next = append(next, s.products[:i]...)
	next = append(next, s.products[i+1:]...)

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.products = next
	s.mu.Unlock()

	s.notify()
	return nil
}

// Subscribe registers fn to be called after every mutation.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	products := s.snapshot()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(products)
	}
}

// persist must be called with mu held
func (s *Store) persist(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal catalog failed: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("persist catalog failed: %w", err)
	}
	return nil
}

func (s *Store) snapshot() []domain.Product {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func validate(p domain.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !(p.Price > 0) || math.IsInf(p.Price, 0) {
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	}
	if !p.Unit.Valid() {
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidProduct, p.Unit)
	}
	if math.IsNaN(p.Stock) || math.IsInf(p.Stock, 0) {
		return fmt.Errorf("%w: stock must be a number", ErrInvalidProduct)
	}
	return nil
}
