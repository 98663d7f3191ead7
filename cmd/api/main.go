package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/checkout"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/cache"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/logger"
	"github.com/example/ec-storefront/internal/query"
	"github.com/example/ec-storefront/internal/seed"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("api exited")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	root, closer, err := logger.New(logger.Options{
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
	lg := logger.Component("api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	lg.Info().Msg("connected to PostgreSQL")

	if err := store.Migrate(db); err != nil {
		return err
	}

	var products product.Store = store.NewPostgresProductStore(db)
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			lg.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, catalog cache disabled")
		} else {
			defer rc.Close()
			products = cache.NewCatalogStore(products, rc, cfg.CacheTTL)
			lg.Info().Str("addr", cfg.RedisAddr).Msg("catalog cache enabled")
		}
	}

	if cfg.SeedOnStart {
		seeder := seed.NewSeeder(seed.NewFeedClient(cfg.FeedURL, cfg.FeedTimeout), products)
		seeded, err := seeder.SeedIfEmpty(ctx)
		switch {
		case err != nil:
			lg.Error().Err(err).Msg("initial seed failed, starting with an empty catalog")
		case seeded:
			lg.Info().Msg("catalog seeded from feed")
		}
	}

	var publisher checkout.Publisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer := kafka.NewProducer(brokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
		lg.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaTopic).Msg("checkout events enabled")
	}

	cartSvc := cart.NewService(store.NewPostgresCartStore(db))
	checkoutSvc := checkout.NewService(cartSvc, checkout.NewValidator(), publisher)

	handlers, err := api.NewHandlers(
		command.NewHandler(cartSvc, checkoutSvc),
		query.NewHandler(products, cartSvc, checkoutSvc, cfg.ItemsPerPage),
		middleware.NewSessionManager(cfg.SecretKey, false),
		auth.NewCSRFService(cfg.SecretKey, cfg.CSRFTTL),
		db,
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(handlers, api.RouterConfig{
			MaxBodyBytes:   cfg.MaxContentLength,
			Logger:         root,
			AllowedOrigins: cfg.AllowedOrigins(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info().Str("addr", server.Addr).Msg("server started")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
