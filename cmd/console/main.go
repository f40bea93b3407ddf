package main

import (
	"log/slog"
	"os"

	"rescue-console/internal/app"
	"rescue-console/internal/logger"
)

func main() {
	slog.SetDefault(logger.New(os.Stdout, slog.LevelInfo, true))

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize console gateway", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("console gateway run failed", "error", err)
		os.Exit(1)
	}
}
