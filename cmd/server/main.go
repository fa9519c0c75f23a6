package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"warehouse-slotting/internal/bootstrap"
	"warehouse-slotting/internal/config"
	"warehouse-slotting/internal/db"
	"warehouse-slotting/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", "err", err)
	}
	defer rt.Close()

	applied, err := db.Migrate(ctx, rt.Pool)
	if err != nil {
		logger.Fatal("migrations failed", "err", err)
	}
	for _, name := range applied {
		logger.Info("migration applied", "file", name)
	}

	if err := bootstrap.Serve(ctx, rt, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		rt.Close()
		os.Exit(1)
	}
}
