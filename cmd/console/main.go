// cmd/console/main.go
package main

import (
	"context"
	"fmt"
	"go-bank-console/app"
	"go-bank-console/config"
	"go-bank-console/console"
	"go-bank-console/logger"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "bank console:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadConfig("."); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.InitWithLevel(config.AppConfig.Log.Level)

	// Log lines would tear the terminal forms apart.
	logger.Log.SetOutput(io.Discard)
	if path := config.AppConfig.Log.File; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger.Log.SetOutput(f)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Log.WithField("api", config.AppConfig.API.BaseURL).Info("Terminal console started")
	return console.New(a.Accounts, console.FormPrompter{}, os.Stdout).Run(ctx)
}
