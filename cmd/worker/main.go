package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"rollbook/internal/config"
	"rollbook/internal/export"
	"rollbook/internal/logging"
	"rollbook/internal/queue"
	"rollbook/internal/store"
)

// Worker consumes export jobs and writes report files under EXPORT_DIR.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.QueueBackend == config.QueueMemory {
		logger.Warn("QUEUE_BACKEND=memory: jobs are only visible inside the api process; this worker will stay idle")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("store open failed", zap.Error(err))
	}
	defer func() { _ = closeKV() }()

	jobs, closeQueue := queue.Open(cfg)
	defer func() { _ = closeQueue() }()

	runner := &export.Runner{KV: kv, Dir: cfg.ExportDir, Log: logger}
	logger.Info("worker started, waiting for export jobs",
		zap.String("store", cfg.StoreBackend),
		zap.String("queue", cfg.QueueBackend),
		zap.String("dir", cfg.ExportDir))
	if err := runner.Serve(ctx, jobs); err != nil {
		logger.Error("worker stopped", zap.Error(err))
		return
	}
	logger.Info("worker stopped")
}
