package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/docintel/docintel/internal/common"
	"github.com/docintel/docintel/internal/repository"
)

// storecheck opens the local store, pings it, and reports whether the
// schema is usable. Handy before pointing the daemon at an existing file.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := repository.Open(cfg.Store.Path, logger)
	if err != nil {
		logger.Error("opening store failed", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx, time.Second); err != nil {
		logger.Error("store health: FAIL", "error", err)
		os.Exit(1)
	}
	logger.Info("store health: OK", "path", cfg.Store.Path)
}
