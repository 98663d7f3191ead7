package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	productsKey   = "storefront:products"
	categoriesKey = "storefront:categories"

	DefaultCatalogTTL = 10 * time.Minute
)

// CatalogStore is a read-through cache in front of a product.Store. Cache
// failures are logged and the call falls through to the underlying store.
type CatalogStore struct {
	next   product.Store
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCatalogStore(next product.Store, cache Cache, ttl time.Duration) *CatalogStore {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogStore{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log.With().Str("component", "catalog-cache").Logger(),
	}
}

func (s *CatalogStore) List(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	if s.load(ctx, productsKey, &products) {
		return products, nil
	}
	products, err := s.next.List(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, productsKey, products)
	return products, nil
}

func (s *CatalogStore) Get(ctx context.Context, id int) (*product.Product, error) {
	return s.next.Get(ctx, id)
}

func (s *CatalogStore) Count(ctx context.Context) (int, error) {
	return s.next.Count(ctx)
}

func (s *CatalogStore) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if s.load(ctx, categoriesKey, &categories) {
		return categories, nil
	}
	categories, err := s.next.Categories(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, categoriesKey, categories)
	return categories, nil
}

// ReplaceAll writes through and then drops the cached catalog.
func (s *CatalogStore) ReplaceAll(ctx context.Context, products []product.Product) error {
	if err := s.next.ReplaceAll(ctx, products); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate removes every cached catalog key.
func (s *CatalogStore) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, productsKey, categoriesKey); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate catalog cache")
	}
}

func (s *CatalogStore) load(ctx context.Context, key string, v any) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false
	}
	return true
}

func (s *CatalogStore) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
