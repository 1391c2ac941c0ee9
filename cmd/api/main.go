package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clubhub-backend/infrastructure/config"
	"clubhub-backend/infrastructure/di"
	"clubhub-backend/pkg/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using process environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Observability.EnableTracing,
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Observability.OTLPEndpoint,
		SampleRate:  cfg.Observability.TraceSampleRate,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	if cfg.File != "" {
		watcher, err := config.NewWatcher(cfg, logger)
		if err != nil {
			logger.Warn("Config hot reload disabled", zap.Error(err))
		} else {
			watcher.OnChange(config.ApplyLogLevel(container.LogLevel))
			watcher.Start()
			defer watcher.Stop()
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      container.Router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server",
			zap.String("address", cfg.Server.Address),
			zap.String("environment", cfg.Environment),
			zap.String("backend", cfg.Persistence.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		container.Authorization.Start(gctx)
		return nil
	})
	g.Go(func() error {
		container.Router.RunMaintenance(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("Tracer shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}
