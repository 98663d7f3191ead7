package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/cache"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/logger"
	"github.com/example/ec-storefront/internal/seed"
)

func main() {
	reset := flag.Bool("reset", false, "drop all carts and the catalog, then reseed")
	check := flag.Bool("check", false, "print catalog statistics and exit")
	clearCart := flag.Bool("clear-cart", false, "empty the shared cart and exit")
	flag.Parse()

	if err := run(*reset, *check, *clearCart); err != nil {
		log.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}

func run(reset, check, clearCart bool) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	_, closer, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		Debug:      cfg.Debug,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	lg := logger.Component("seed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		return err
	}

	// Seeding through the cache decorator keeps a running api from serving
	// the old catalog.
	var products product.Store = store.NewPostgresProductStore(db)
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			lg.Warn().Err(err).Msg("redis unavailable, cached catalog not invalidated")
		} else {
			defer rc.Close()
			products = cache.NewCatalogStore(products, rc, cfg.CacheTTL)
		}
	}

	seeder := seed.NewSeeder(seed.NewFeedClient(cfg.FeedURL, cfg.FeedTimeout), products)

	switch {
	case clearCart:
		carts := cart.NewService(store.NewPostgresCartStore(db))
		if err := carts.Clear(ctx, cart.DefaultID); err != nil {
			return err
		}
		lg.Info().Str("cart_id", string(cart.DefaultID)).Msg("cart cleared")
		return nil
	case check:
		stats, err := seeder.Inspect(ctx)
		if err != nil {
			return err
		}
		printStats(stats)
		return nil
	case reset:
		// ReplaceAll cascades to cart_items, so carts are dropped with the
		// old catalog in the same transaction.
		n, err := seeder.Run(ctx)
		if err != nil {
			return err
		}
		lg.Info().Int("products", n).Msg("catalog reset and reseeded")
		return nil
	default:
		seeded, err := seeder.SeedIfEmpty(ctx)
		if err != nil {
			return err
		}
		if !seeded {
			lg.Info().Msg("catalog already populated, use -reset to replace it")
		}
		return nil
	}
}

func printStats(stats *seed.Stats) {
	fmt.Printf("Products:   %d\n", stats.Count)
	fmt.Printf("Categories: %s\n", strings.Join(stats.Categories, ", "))
	for _, p := range stats.Samples {
		fmt.Printf("  #%d %s ($%s, %s)\n", p.ID, p.Title, p.Price.StringFixed(2), p.Category)
	}
}
