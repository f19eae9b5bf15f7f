package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/clockline/clockline/internal/app/backend"
)

func main() {
	ctx := context.Background()

	runtime, cleanup, err := backend.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("failed to bootstrap backend: %v", err)
	}
	defer cleanup()
	logger := runtime.Logger

	stats, err := runtime.Projects.Statistics(ctx)
	if err != nil {
		logger.Error("failed to load project statistics", slog.String("error", err.Error()))
	} else {
		logger.Info("projects subsystem ready",
			slog.Int64("projects.active", stats.TotalActive),
			slog.Int64("projects.overdue", stats.TotalOverdue),
		)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info("shutting down", slog.String("signal", sig.String()))
}
