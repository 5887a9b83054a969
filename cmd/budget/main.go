package main

import (
	"context"
	"fmt"
	"os"

	"budget/internal/cli"
	"budget/internal/export"
	"budget/internal/log"
	"budget/internal/services"

	"github.com/shopspring/decimal"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)
	logger.Info("Starting budget")

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	j, closeJournal, err := cli.InitJournal(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize journal", log.FieldError, err)
		os.Exit(1)
	}
	defer closeJournal()

	pub, closePublisher, err := cli.InitPublisher(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize publisher", log.FieldError, err)
		os.Exit(1)
	}
	defer closePublisher()

	book := services.NewBook(j, pub, logger)
	if err := book.Load(ctx); err != nil {
		logger.Error("Failed to load journal", log.FieldError, err)
		os.Exit(1)
	}

	// A fresh journal gets the sample budget.
	if len(book.Categories()) == 0 {
		if err := runSample(ctx, book); err != nil {
			logger.Error("Sample budget failed", log.FieldError, err)
			os.Exit(1)
		}
	}

	for _, c := range book.Categories() {
		report, err := book.Report(c.Name())
		if err != nil {
			logger.Error("Failed to render report", log.FieldCategory, c.Name(), log.FieldError, err)
			continue
		}
		fmt.Println(report)
		fmt.Println()
	}

	chart, err := book.SpendChart()
	if err != nil {
		logger.Error("Failed to render spend chart", log.FieldError, err)
		os.Exit(1)
	}
	fmt.Println(chart)

	if cfg.ExportPath != "" {
		exportLogger := logger.WithComponent(log.ComponentExport)
		sheets, err := export.WriteWorkbook(cfg.ExportPath, book.Categories())
		if err != nil {
			exportLogger.Error("Failed to export workbook", log.FieldPath, cfg.ExportPath, log.FieldError, err)
			os.Exit(1)
		}
		exportLogger.Info("Workbook exported",
			log.FieldOperation, log.OpExport,
			log.FieldPath, cfg.ExportPath,
			"sheets", len(sheets))
	}
}

// runSample records the sample budget: food, clothing and auto.
func runSample(ctx context.Context, book *services.Book) error {
	for _, name := range []string{"Food", "Clothing", "Auto"} {
		if _, err := book.Open(ctx, name); err != nil {
			return err
		}
	}

	steps := []func() error{
		func() error {
			return book.Deposit(ctx, "Food", decimal.NewFromInt(1000), "initial deposit")
		},
		withdraw(ctx, book, "Food", "10.15", "groceries"),
		withdraw(ctx, book, "Food", "15.89", "restaurant and more food for dessert"),
		func() error {
			_, err := book.Transfer(ctx, "Food", "Clothing", decimal.NewFromInt(50))
			return err
		},
		withdraw(ctx, book, "Clothing", "25.55", ""),
		withdraw(ctx, book, "Clothing", "100", ""),
		func() error {
			return book.Deposit(ctx, "Auto", decimal.NewFromInt(1000), "initial deposit")
		},
		withdraw(ctx, book, "Auto", "15", ""),
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func withdraw(ctx context.Context, book *services.Book, name, amount, description string) func() error {
	return func() error {
		_, err := book.Withdraw(ctx, name, decimal.RequireFromString(amount), description)
		return err
	}
}
