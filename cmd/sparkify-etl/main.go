package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cesargomez89/sparkify/internal/app"
	"github.com/cesargomez89/sparkify/internal/config"
	"github.com/cesargomez89/sparkify/internal/logger"
	"github.com/cesargomez89/sparkify/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("ETL_CONFIG"))
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("ETL run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) error {
	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Database.Driver, err)
	}
	defer db.Close() //nolint:errcheck // end of run

	if cfg.CreateSchema {
		if err := db.CreateSchema(ctx); err != nil {
			return err
		}
		appLogger.Info("Schema ready", "driver", cfg.Database.Driver)
	}

	pipeline := app.NewPipeline(db, appLogger, os.Stdout)
	report, err := pipeline.Run(ctx, cfg.SongRoot, cfg.LogRoot)
	if err != nil {
		return err
	}

	if n := len(report.Failures); n > 0 {
		appLogger.Warn("Run completed with row errors", "row_errors", n, "run_id", report.RunID)
	}
	return nil
}
