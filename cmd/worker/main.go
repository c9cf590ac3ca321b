// Command worker drains the transfer notification queue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/erp/stocktransfer/internal/infrastructure/cache"
	"github.com/erp/stocktransfer/internal/infrastructure/config"
	"github.com/erp/stocktransfer/internal/infrastructure/logger"
	"github.com/erp/stocktransfer/internal/infrastructure/notification"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}).
		Named("worker")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	// Asynq retries a task after a crash mid-delivery, so deliveries are
	// deduplicated on the task id.
	store, err := cache.NewIdempotencyStoreFactory(redisClient,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(false),
		cache.WithKeyPrefix("stocktransfer:notify:"),
	).CreateStore(ctx)
	if err != nil {
		return err
	}

	worker, err := notification.NewWorker(notification.WorkerConfig{
		RedisOpts:   notification.RedisClientOpt(cfg.Redis),
		Concurrency: cfg.Queue.Concurrency,
		Queue:       cfg.Queue.Queue,
		Handler:     notification.NewHandler(store, log),
		Logger:      log,
	})
	if err != nil {
		return err
	}

	log.Info("Notification worker started", zap.String("queue", cfg.Queue.Queue))
	return worker.Run(ctx)
}
