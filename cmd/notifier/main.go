package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/logger"
	"github.com/example/ec-storefront/internal/notification"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("notifier exited")
		os.Exit(1)
	}
}

func run() error {
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
	lg := logger.Component("notifier")

	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required for the notifier")
	}

	emailSvc, err := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	if err != nil {
		return err
	}
	handler := notification.NewHandler(emailSvc)

	consumer := kafka.NewConsumer(brokers, cfg.KafkaTopic, cfg.KafkaConsumerGroup)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lg.Info().
		Strs("brokers", brokers).
		Str("topic", cfg.KafkaTopic).
		Str("group", cfg.KafkaConsumerGroup).
		Str("smtp", cfg.SMTPHost).
		Msg("starting event consumer")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := consumer.Consume(gctx, handler.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	err = g.Wait()
	lg.Info().Msg("shutting down")
	return err
}
