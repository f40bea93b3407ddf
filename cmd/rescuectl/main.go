package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"rescue-console/internal/cli"
	"rescue-console/internal/logger"
)

func main() {
	// routine info lines would mix with command output
	level := slog.LevelWarn
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level = logger.ParseLevel(raw)
	}
	slog.SetDefault(logger.New(os.Stderr, level, false))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
