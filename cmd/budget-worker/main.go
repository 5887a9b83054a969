package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/journal"
	"budget/internal/log"
	"budget/internal/storage"
	"budget/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)
	logger.Info("Starting budget-worker")

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	// With a SQLite journal the projection seeds from it and fills gaps
	// left by lost messages.
	var j journal.Journal
	if cfg.JournalBackend == config.BackendSQLite {
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
		if err != nil {
			logger.Error("Failed to initialize SQLite journal", log.FieldError, err, log.FieldPath, cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		j = repo
	} else {
		logger.Warn("No shared journal configured, sequence gaps cannot be filled", log.FieldBackend, cfg.JournalBackend)
	}

	projection := worker.NewProjection(logger, j)
	if j != nil {
		if _, err := projection.Seed(ctx, j); err != nil {
			logger.Error("Failed to seed projection", log.FieldError, err)
			os.Exit(1)
		}
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeEntries(gctx, projection.HandleEntry)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ChartInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				projection.LogChart(gctx)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}

	projection.LogChart(context.Background())
	logger.Info("Worker shutdown complete")
}
