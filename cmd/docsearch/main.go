package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/config"
	dbmongo "github.com/kailas-cloud/docsearch/internal/db/mongo"
	"github.com/kailas-cloud/docsearch/internal/domain"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	searchrepo "github.com/kailas-cloud/docsearch/internal/repository/search"
	"github.com/kailas-cloud/docsearch/internal/transport/backend"
	chiTransport "github.com/kailas-cloud/docsearch/internal/transport/chi"
	"github.com/kailas-cloud/docsearch/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
	"github.com/kailas-cloud/docsearch/internal/version"
)

const (
	appName            = "docsearch"
	healthCheckTimeout = 2 * time.Second
	releaseTimeout     = 5 * time.Second
	storeCloseTimeout  = 5 * time.Second
)

func main() {
	// .env is optional; real environment variables win.
	if err := config.LoadDotEnv(); err != nil {
		panic("failed to load .env: " + err.Error())
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docsearch API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("discovery_mode", cfg.Discovery.Mode),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("docsearch stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// run resolves storage, serves HTTP until ctx is cancelled, then shuts down
// in reverse order: listener, backend registration, store.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	// Register metrics explicitly (no init())
	metrics.Register()

	discoverer, err := newDiscoverer(cfg, logger)
	if err != nil {
		return err
	}

	storage, err := discoverer.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve storage: %w", err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		discoverer.Release(releaseCtx)
	}()

	store, err := dbmongo.NewStore(ctx, dbmongo.Config{
		URI:            storage.MongoAddress,
		Database:       storage.MongoDatabase,
		Collection:     storage.MongoCollection,
		AppName:        appName,
		ConnectTimeout: config.Seconds(cfg.Storage.ConnectTimeoutSec),
		QueryTimeout:   config.Seconds(cfg.Storage.QueryTimeoutSec),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageConnection, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), storeCloseTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("Failed to close document store", zap.Error(err))
		}
	}()

	// Wait for the document store to be ready
	if err := store.WaitForReady(ctx, config.Seconds(cfg.Storage.ReadinessTimeoutSec)); err != nil {
		return fmt.Errorf("%w: document store not ready: %w", domain.ErrStorageConnection, err)
	}
	logger.Info("Connected to document store",
		zap.String("database", storage.MongoDatabase),
		zap.String("collection", storage.MongoCollection),
	)

	// Composition root
	searchSvc := searchuc.New(searchrepo.New(store))
	healthSvc := healthuc.New(store, healthCheckTimeout)
	server := chiTransport.NewServer(searchSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterOptions{
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: config.Seconds(cfg.HTTP.ReadTimeoutSec),
		ReadTimeout:       config.Seconds(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout:      config.Seconds(cfg.HTTP.WriteTimeoutSec),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// newDiscoverer picks the storage discovery strategy for the configured mode.
func newDiscoverer(cfg config.Config, logger *zap.Logger) (discovery.Discoverer, error) {
	switch cfg.Discovery.Mode {
	case config.DiscoveryStatic:
		return discovery.NewStatic(cfg.Storage.Coordinates()), nil
	case config.DiscoveryRegister:
		client, err := backend.New(backend.Config{
			BaseURL:     cfg.Discovery.BackendAddress,
			ModuleName:  cfg.Discovery.ModuleName,
			SelfAddress: cfg.Discovery.SelfAddress,
			Schema:      backend.Schema(cfg.Discovery.Schema),
			Timeout:     config.Seconds(cfg.Discovery.TimeoutSec),
		})
		if err != nil {
			return nil, err
		}
		return discovery.NewRegistered(client, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown discovery mode %q", domain.ErrConfiguration, cfg.Discovery.Mode)
	}
}
