package seed

import (
	"context"
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// sampleSize is the number of products Inspect returns.
const sampleSize = 3

// Seeder loads the catalog from a Fetcher into a product.Store
type Seeder struct {
	feed   Fetcher
	store  product.Store
	logger zerolog.Logger
}

func NewSeeder(feed Fetcher, store product.Store) *Seeder {
	return &Seeder{
		feed:   feed,
		store:  store,
		logger: log.With().Str("component", "seed").Logger(),
	}
}

// Run replaces the catalog with the feed contents. Nothing is written when
// the fetch fails. Cart items pointing at replaced products are dropped with
// them.
func (s *Seeder) Run(ctx context.Context) (int, error) {
	start := time.Now()
	products, err := s.feed.Fetch(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("feed fetch failed")
		return 0, err
	}
	if err := s.store.ReplaceAll(ctx, products); err != nil {
		s.logger.Error().Err(err).Msg("catalog replace failed")
		return 0, err
	}
	s.logger.Info().
		Int("count", len(products)).
		Dur("duration", time.Since(start)).
		Msg("catalog seeded")
	return len(products), nil
}

// SeedIfEmpty runs the seed only when the catalog has no products. It
// reports whether a seed happened.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (bool, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.logger.Debug().Int("count", n).Msg("catalog already populated")
		return false, nil
	}
	if _, err := s.Run(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Stats is a snapshot of the catalog for diagnostics.
type Stats struct {
	Count      int
	Categories []string
	Samples    []product.Product
}

// Inspect reports the product count, categories and the first few products.
func (s *Seeder) Inspect(ctx context.Context) (*Stats, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	samples := products
	if len(samples) > sampleSize {
		samples = samples[:sampleSize]
	}
	return &Stats{Count: len(products), Categories: categories, Samples: samples}, nil
}
