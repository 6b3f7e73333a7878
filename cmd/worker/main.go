package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"academia/internal/activity"
	"academia/internal/config"
	"academia/internal/directory"
	"academia/internal/logging"
	"academia/internal/mailer"
	"academia/internal/queue"
	"academia/internal/store"
)

// Worker consumes activity decision events and sweeps expired rejected records.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		log.Warn("QUEUE_BACKEND=memory: the API consumes its own events, this worker only sweeps")
		q = queue.NewInMemory(1)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
		if !redisClient.Healthy(ctx) {
			log.Warn("redis not reachable yet, consumer will keep retrying", zap.String("addr", cfg.RedisAddr))
		}
	}

	activities := activity.NewRepository(db.Client)
	notifier := activity.NewNotifier(
		activities,
		directory.NewRepository(db.Client),
		mailer.New(cfg.SendgridAPIKey, "Academia", cfg.MailFrom, log),
		log,
	)
	sweeper := activity.NewSweeper(activities, log)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx, cfg.SweepInterval)
	}()
	go func() {
		defer wg.Done()
		if err := notifier.Run(ctx, q); err != nil {
			log.Error("consumer stopped", zap.Error(err))
			cancel()
		}
	}()

	log.Info("worker started", zap.Duration("sweep_interval", cfg.SweepInterval))
	wg.Wait()
	log.Info("worker stopped")
}
