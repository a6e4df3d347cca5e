package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/access"
	"github.com/egannguyen/go-kafka-marketplace/internal/cache"
	cacheredis "github.com/egannguyen/go-kafka-marketplace/internal/cache/redis"
	"github.com/egannguyen/go-kafka-marketplace/internal/config"
	delivery "github.com/egannguyen/go-kafka-marketplace/internal/delivery/http"
	"github.com/egannguyen/go-kafka-marketplace/internal/messaging"
	"github.com/egannguyen/go-kafka-marketplace/internal/messaging/kafka"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository/memory"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository/postgres"
	"github.com/egannguyen/go-kafka-marketplace/internal/seed"
	"github.com/egannguyen/go-kafka-marketplace/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Marketplace stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Storage ---
	var repos repository.Repositories
	switch cfg.Storage {
	case config.StorageMemory:
		slog.Info("Using in-memory storage")
		repos = memory.New().Repositories()
	default:
		db, err := postgres.InitDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to init database: %w", err)
		}
		defer db.Close()
		repos = postgres.New(db)
	}

	if cfg.Seed {
		data, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, repos, data); err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}
	}

	// --- Cache ---
	var productCache cache.ProductCache = cache.Nop{}
	if cfg.RedisURL != "" {
		rc, err := cacheredis.Dial(ctx, cfg.RedisURL, cfg.ProductCacheTTL)
		if err != nil {
			return err
		}
		defer rc.Close()
		productCache = rc
		slog.Info("Product cache enabled", "ttl", cfg.ProductCacheTTL)
	}

	// --- Kafka ---
	var publisher messaging.Publisher = messaging.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		broker := kafka.NewKafkaBroker(cfg.KafkaBrokers)
		defer broker.Close()
		publisher = broker
		slog.Info("Publishing events to Kafka", "brokers", cfg.KafkaBrokers)
	}

	// --- Services ---
	authz := access.NewAuthorizer(repos.Managers)
	handler := delivery.NewHandler(
		service.NewCatalogService(repos, authz, productCache),
		service.NewCartService(repos.Carts, repos.Products),
		service.NewCheckoutService(repos.Checkout, publisher,
			service.WithStockReservation(cfg.ReserveStock),
			service.WithProductCache(productCache),
		),
		service.NewOrderService(repos.Orders, authz, publisher),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           delivery.NewRouter(handler, delivery.NewMetrics()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.Info("Shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()
	return httpServer.Shutdown(shutdownCtx)
}
