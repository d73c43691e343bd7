package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/config"
	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/pkg/logger"
	"github.com/college-transport-tracker/internal/repository/cache"
	"github.com/college-transport-tracker/internal/repository/postgres"
	redisRepo "github.com/college-transport-tracker/internal/repository/redis"
	"github.com/college-transport-tracker/internal/worker"
	"github.com/college-transport-tracker/internal/worker/relay"
)

// relayedCollections - коллекции, изменения которых ретранслируются в Redis Streams
var relayedCollections = []string{
	domain.CollectionVehicleLocations,
	domain.CollectionRoutes,
}

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Change Relay Worker")
	log.Info("Configuration loaded",
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Strings("collections", relayedCollections))

	// 3. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Initialize repositories
	listener := postgres.NewChangeListener(
		cfg.Database.DSN(),
		cfg.Tracker.ListenerMinReconnect,
		cfg.Tracker.ListenerMaxReconnect,
		log,
	)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log, cfg.Worker.StreamReadTimeout)

	// 5. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log, worker.DefaultShutdownTimeout)
	for _, collection := range relayedCollections {
		workerManager.Register(relay.NewChangeRelayWorker(
			listener,
			streamRepo,
			collection,
			cfg.Worker.MaxRetries,
			log,
		))
	}

	// 6. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
