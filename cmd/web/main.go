package main

import (
	"log/slog"
	"os"

	"classpulse/internal/app"
	"classpulse/internal/config"
)

func main() {
	if err := config.LoadDotEnv(config.DefaultEnvFile); err != nil {
		slog.Warn("Continuing with system environment", slog.String("error", err.Error()))
	}

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
