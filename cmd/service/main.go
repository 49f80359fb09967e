// Command service runs the tarot reading API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/tarot-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/tarot-service/internal/platform/config"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
	"github.com/jsamuelsen/tarot-service/internal/platform/telemetry"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// Set at build time:
//
//	go build -ldflags "-X main.Version=1.4.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%FT%TZ)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("provider", cfg.LLM.Provider),
	)

	// Cancelled on SIGINT or SIGTERM; everything below shuts down from it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer closeLogged(logger, "telemetry shutdown", func() error {
		return tel.Shutdown(context.WithoutCancel(ctx))
	})

	store, err := sqlite.Open(ctx, sqlite.Config{
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	defer closeLogged(logger, "database close", store.Close)

	health := ports.NewHealthRegistry()
	if err := health.Register(store); err != nil {
		return fmt.Errorf("registering database health check: %w", err)
	}

	generator, err := newGenerator(ctx, cfg, logger, health)
	if err != nil {
		return err
	}

	server := newServer(cfg, logger, store, generator, health)

	return serve(ctx, logger, server, cfg.Server.ShutdownTimeout)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
}

func closeLogged(logger *slog.Logger, what string, fn func() error) {
	if err := fn(); err != nil {
		logger.Error(what+" failed", slog.Any("error", err))
	}
}

// serve runs the server until ctx is cancelled or the listener fails, then
// drains in-flight requests for at most timeout. A stream cut off by the
// deadline records no reading.
func serve(ctx context.Context, logger *slog.Logger, server httpServer, timeout time.Duration) error {
	serverErr := server.Start()

	select {
	case err, ok := <-serverErr:
		if ok && err != nil {
			return fmt.Errorf("server error: %w", err)
		}

		return errors.New("server stopped unexpectedly")

	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", timeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
