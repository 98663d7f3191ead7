package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/domain/product"
)

// MockProductStore is an in-memory product.Store for testing
type MockProductStore struct {
	mu       sync.RWMutex
	products map[int]product.Product

	// For tracking calls in tests
	ListCalls       int
	ReplaceAllCalls [][]product.Product

	ListErr       error
	GetErr        error
	CountErr      error
	CategoriesErr error
	ReplaceAllErr error
}

// NewMockProductStore creates a MockProductStore holding products
func NewMockProductStore(products ...product.Product) *MockProductStore {
	m := &MockProductStore{products: make(map[int]product.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *MockProductStore) List(ctx context.Context) ([]product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.sortedUnsafe(), nil
}

func (m *MockProductStore) Get(ctx context.Context, id int) (*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.NotFound("product", id)
	}
	return &p, nil
}

func (m *MockProductStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return len(m.products), nil
}

func (m *MockProductStore) Categories(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.CategoriesErr != nil {
		return nil, m.CategoriesErr
	}
	seen := make(map[string]bool)
	var categories []string
	for _, p := range m.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// ReplaceAll swaps the catalog; on ReplaceAllErr the previous catalog stays
func (m *MockProductStore) ReplaceAll(ctx context.Context, products []product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceAllCalls = append(m.ReplaceAllCalls, products)
	if m.ReplaceAllErr != nil {
		return m.ReplaceAllErr
	}
	m.products = make(map[int]product.Product, len(products))
	for _, p := range products {
		m.products[p.ID] = p
	}
	return nil
}

// Exists reports whether id is in the catalog
func (m *MockProductStore) Exists(id int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.products[id]
	return ok
}

// Lookup returns a product without recording a call
func (m *MockProductStore) Lookup(id int) (product.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	return p, ok
}

func (m *MockProductStore) sortedUnsafe() []product.Product {
	out := make([]product.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
