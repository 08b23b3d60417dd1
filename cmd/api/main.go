package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rollbook/internal/config"
	"rollbook/internal/export"
	"rollbook/internal/httpapi"
	"rollbook/internal/logging"
	"rollbook/internal/queue"
	"rollbook/internal/session"
	"rollbook/internal/store"
)

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

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api failed", zap.Error(err))
	}
}

func run(cfg config.App, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeKV() }()
	logger.Info("store ready", zap.String("backend", cfg.StoreBackend))

	sess, err := session.Open(ctx, kv, logger)
	if err != nil {
		return err
	}

	jobs, closeQueue := queue.Open(cfg)
	defer func() { _ = closeQueue() }()

	// Without a shared queue nobody else can drain the jobs.
	if cfg.QueueBackend == config.QueueMemory {
		runner := &export.Runner{KV: kv, Dir: cfg.ExportDir, Log: logger.Named("exports")}
		go func() {
			if err := runner.Serve(ctx, jobs); err != nil {
				logger.Error("in-process export worker stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpapi.New(sess, jobs, logger.Named("http")).Router(httpapi.Options{RateLimitPerMin: cfg.RateLimitPerMin}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
	return nil
}
