package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dreamcandylab/candylab-backend/api/routes"
	"github.com/dreamcandylab/candylab-backend/internal/auth"
	"github.com/dreamcandylab/candylab-backend/internal/cart"
	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	"github.com/dreamcandylab/candylab-backend/internal/checkout"
	"github.com/dreamcandylab/candylab-backend/internal/jellies"
	"github.com/dreamcandylab/candylab-backend/internal/orders"
	"github.com/dreamcandylab/candylab-backend/internal/pricing"
	"github.com/dreamcandylab/candylab-backend/internal/users"
	"github.com/dreamcandylab/candylab-backend/internal/votes"
	"github.com/dreamcandylab/candylab-backend/pkg/auth/session"
	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/db"
	"github.com/dreamcandylab/candylab-backend/pkg/instance"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/metrics"
	"github.com/dreamcandylab/candylab-backend/pkg/migrate"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox"
	"github.com/dreamcandylab/candylab-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.AutoRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefront(registry)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ledger, err := votes.NewLedger(votes.LedgerParams{
		Repo:    votes.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Outbox:  emitter,
		Locks:   redisClient,
		LockTTL: cfg.Storefront.VoteLockTTL,
		Metrics: storefrontMetrics,
		Logger:  logg,
	})
	if err != nil {
		return err
	}

	jellyService, err := jellies.NewService(jellies.ServiceParams{
		Repo:             jellies.NewRepository(dbClient.DB()),
		Tx:               dbClient,
		Outbox:           emitter,
		Votes:            ledger,
		Metrics:          storefrontMetrics,
		Logger:           logg,
		CustomJellyPrice: cfg.Storefront.CustomJellyPrice,
		WinnerJellyPrice: cfg.Storefront.WinnerJellyPrice,
	})
	if err != nil {
		return err
	}

	resolver := catalog.NewResolver(jellyService)

	cartService, err := cart.NewService(cart.ServiceParams{
		Store:    redisClient,
		Products: resolver,
		TTL:      cfg.Storefront.CartTTL,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	recorder, err := orders.NewRecorder(orders.RecorderParams{
		Repo:   orders.NewRepository(dbClient.DB()),
		Tx:     dbClient,
		Outbox: emitter,
		Logger: logg,
	})
	if err != nil {
		return err
	}

	calculator := pricing.NewCalculator(pricing.PolicyFromConfig(cfg.Storefront))
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Cart:       cartService,
		Products:   resolver,
		Calculator: calculator,
		Orders:     recorder,
		Metrics:    storefrontMetrics,
		Logger:     logg,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"db_driver": dbClient.Driver(),
		"instance":  instance.ID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Auth:        authService,
			Register:    registerService,
			Resolver:    resolver,
			Cart:        cartService,
			Calculator:  calculator,
			Checkout:    checkoutService,
			Orders:      recorder,
			Jellies:     jellyService,
			Votes:       ledger,
			HTTPMetrics: metrics.NewHTTP(registry),
			Gatherer:    registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
