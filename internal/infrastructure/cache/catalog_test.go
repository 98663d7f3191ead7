package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-process Cache with optional failure injection
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet error
	failSet error
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return nil, c.failGet
	}
	v, ok := c.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet != nil {
		return c.failSet
	}
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func catalogFixture() *mocks.MockProductStore {
	return mocks.NewMockProductStore(
		product.Product{ID: 1, Title: "Jacket", Price: decimal.RequireFromString("55.99"), Category: "men's clothing"},
		product.Product{ID: 2, Title: "SSD", Price: decimal.RequireFromString("109.00"), Category: "electronics"},
	)
}

func TestCatalogStore_ListReadThrough(t *testing.T) {
	backing := catalogFixture()
	mem := newMemoryCache()
	s := NewCatalogStore(backing, mem, time.Minute)
	ctx := context.Background()

	first, err := s.List(ctx)
	require.NoError(t, err)
	second, err := s.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, backing.ListCalls)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].Title, second[0].Title)
	assert.True(t, first[1].Price.Equal(second[1].Price))
	assert.Equal(t, time.Minute, mem.ttls[productsKey])
}

func TestCatalogStore_CategoriesCached(t *testing.T) {
	mem := newMemoryCache()
	s := NewCatalogStore(catalogFixture(), mem, 0)

	categories, err := s.Categories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"electronics", "men's clothing"}, categories)
	assert.Contains(t, mem.data, categoriesKey)
	assert.Equal(t, DefaultCatalogTTL, mem.ttls[categoriesKey])
}

func TestCatalogStore_CacheFailureFallsThrough(t *testing.T) {
	backing := catalogFixture()
	mem := newMemoryCache()
	mem.failGet = errors.New("redis down")
	mem.failSet = errors.New("redis down")
	s := NewCatalogStore(backing, mem, time.Minute)

	products, err := s.List(context.Background())
	require.NoError(t, err)
	_, err = s.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, products, 2)
	assert.Equal(t, 2, backing.ListCalls)
}

func TestCatalogStore_CorruptEntryIgnored(t *testing.T) {
	backing := catalogFixture()
	mem := newMemoryCache()
	mem.data[productsKey] = []byte("{not json")
	s := NewCatalogStore(backing, mem, time.Minute)

	products, err := s.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 1, backing.ListCalls)
}

func TestCatalogStore_ReplaceAllInvalidates(t *testing.T) {
	backing := catalogFixture()
	mem := newMemoryCache()
	s := NewCatalogStore(backing, mem, time.Minute)
	ctx := context.Background()

	_, err := s.List(ctx)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceAll(ctx, []product.Product{
		{ID: 9, Title: "Ring", Price: decimal.NewFromInt(10), Category: "jewelery"},
	}))
	products, err := s.List(ctx)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 9, products[0].ID)
	assert.Equal(t, 1, mem.deletes)
}

func TestCatalogStore_ReplaceAllFailureKeepsCache(t *testing.T) {
	backing := catalogFixture()
	backing.ReplaceAllErr = errors.New("tx aborted")
	mem := newMemoryCache()
	s := NewCatalogStore(backing, mem, time.Minute)

	err := s.ReplaceAll(context.Background(), nil)

	assert.Error(t, err)
	assert.Zero(t, mem.deletes)
}

func TestCatalogStore_ListErrorNotCached(t *testing.T) {
	backing := catalogFixture()
	backing.ListErr = errors.New("db gone")
	mem := newMemoryCache()
	s := NewCatalogStore(backing, mem, time.Minute)

	_, err := s.List(context.Background())

	assert.Error(t, err)
	assert.NotContains(t, mem.data, productsKey)
}
