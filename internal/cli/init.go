// Package cli provides common CLI initialization utilities.
// This package consolidates the startup steps shared by cmd/budget and
// cmd/budget-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"budget/internal/amqp"
	"budget/internal/config"
	"budget/internal/journal"
	"budget/internal/journal/memory"
	"budget/internal/kafka"
	"budget/internal/log"
	"budget/internal/storage"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the application logger from LOG_LEVEL and installs it
// as the slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration validation failed: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitJournal opens the configured journal. The returned close function is
// never nil.
func InitJournal(cfg *config.Config, logger *log.Logger) (journal.Journal, func() error, error) {
	switch cfg.JournalBackend {
	case config.BackendSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite journal %s: %w", cfg.SQLiteDBPath, err)
		}
		logger.Info("Initialized SQLite journal", log.FieldBackend, cfg.JournalBackend, log.FieldPath, cfg.SQLiteDBPath)
		return repo, repo.Close, nil
	default:
		logger.Info("Initialized memory journal", log.FieldBackend, cfg.JournalBackend)
		return memory.New(), func() error { return nil }, nil
	}
}

// InitPublisher connects the configured broker. It returns a nil publisher
// when events are disabled. The returned close function is never nil.
func InitPublisher(cfg *config.Config, logger *log.Logger) (journal.EntryPublisher, func() error, error) {
	switch cfg.EventsBroker {
	case config.BrokerAMQP:
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect AMQP: %w", err)
		}
		logger.Info("Publishing entries to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		return client, client.Close, nil
	case config.BrokerKafka:
		pub := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("Publishing entries to Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return pub, pub.Close, nil
	default:
		logger.Info("Entry events disabled")
		return nil, func() error { return nil }, nil
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
