package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/db"
	"github.com/dreamcandylab/candylab-backend/pkg/instance"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/metrics"
	"github.com/dreamcandylab/candylab-backend/pkg/migrate"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox/registry"
	"github.com/dreamcandylab/candylab-backend/pkg/pubsub"
)

func main() {
	requeue := flag.String("requeue", "", "move a dead-lettered event id back into the queue and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "outbox-publisher"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "outbox-publisher",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if *requeue != "" {
		if err := requeueDeadLetter(cfg, logg, *requeue); err != nil {
			logg.Error(context.Background(), "requeue failed", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requeueDeadLetter(cfg *config.Config, logg *logger.Logger, rawID string) (err error) {
	eventID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	ctx := context.Background()
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := outbox.NewDeadLetters(dbClient.DB()).Requeue(ctx, eventID); err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "event_id", eventID.String()), "dead letter requeued")
	return nil
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.AutoRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, pubsubClient.Close()) }()

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		return err
	}

	relay, err := NewRelay(RelayParams{
		Config:     cfg.Outbox,
		Logger:     logg,
		DB:         dbClient,
		Topics:     pubsubClient,
		Repository: outbox.NewRepository(dbClient.DB()),
		DLQ:        outbox.NewDeadLetters(dbClient.DB()),
		Registry:   eventRegistry,
		Metrics:    metrics.NewPublisher(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return err
	}
	// publishers are stopped before the client closes
	defer func() { err = multierr.Append(err, relay.Close()) }()

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.ID(),
		"topics":   eventRegistry.Topics(),
	})
	logg.Info(ctx, "starting outbox publisher")

	if runErr := relay.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	logg.Info(ctx, "outbox publisher shutting down")
	return nil
}
