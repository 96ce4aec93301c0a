package main

import (
	"context"
	"log/slog"
	"os"

	"weeklyreport/internal/app"
	"weeklyreport/internal/config"
	"weeklyreport/internal/infrastructure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)

	if err := run(cfg, logger); err != nil {
		infrastructure.WithError(logger, err).Error("Application error")
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
	infrastructure.CloseLogFile()
}

func run(cfg *config.Config, logger *slog.Logger) error {
	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		return err
	}
	return application.Run(context.Background())
}
