package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/fjod/go_pos/internal/domain"
)

// MemoryStore implements Store with in-memory storage. Used for local runs
// and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]domain.ProductRecord
	order    []string

	// listErr, when set, is returned by ListProducts. Lets callers exercise
	// the catalog fetch failure path without a real backend.
	listErr error
}

func NewMemoryStore(seed ...domain.ProductRecord) *MemoryStore {
	s := &MemoryStore{products: make(map[string]domain.ProductRecord)}
	for _, p := range seed {
		s.put(p)
	}
	return s
}

// LoadSeedFile reads a JSON array of products into a new MemoryStore.
func LoadSeedFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var products []domain.ProductRecord
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("seed product %q: %w", p.ID, err)
		}
	}
	return NewMemoryStore(products...), nil
}

// FailListing makes ListProducts return err until called again with nil.
func (s *MemoryStore) FailListing(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

func (s *MemoryStore) ListProducts(_ context.Context) ([]domain.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listErr != nil {
		return nil, s.listErr
	}
	products := make([]domain.ProductRecord, 0, len(s.order))
	for _, id := range s.order {
		products = append(products, s.products[id])
	}
	return products, nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (domain.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.ProductRecord{}, fmt.Errorf("get product %q: %w", id, domain.ErrProductNotFound)
	}
	return p, nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, p domain.ProductRecord) (domain.ProductRecord, error) {
	p, err := prepareNew(p)
	if err != nil {
		return domain.ProductRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; exists {
		return domain.ProductRecord{}, fmt.Errorf("product %q: %w", p.ID, domain.ErrProductExists)
	}
	s.put(p)
	return p, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, id string, patch domain.ProductPatch) (domain.ProductRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[id]
	if !ok {
		return domain.ProductRecord{}, fmt.Errorf("update product %q: %w", id, domain.ErrProductNotFound)
	}
	updated, err := patch.Apply(current)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	s.products[id] = updated
	return updated, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("delete product %q: %w", id, domain.ErrProductNotFound)
	}
	delete(s.products, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// put must be called with mu held for writing, or before the store is shared.
func (s *MemoryStore) put(p domain.ProductRecord) {
	if _, exists := s.products[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.products[p.ID] = p
}
