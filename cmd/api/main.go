package main

// @title College Transport Tracker API
// @version 1.0.0
// @description Отслеживание транспорта колледжа в реальном времени.
// @description
// @description Основные возможности:
// @description - Текущий статус каждого активного маршрута с последним положением транспорта
// @description - Поток обновлений статусов (Server-Sent Events)
// @description - Ручное добавление положения транспорта и история положений маршрута

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/college-transport-tracker/docs/swagger"
	"github.com/college-transport-tracker/internal/config"
	httpDelivery "github.com/college-transport-tracker/internal/delivery/http"
	"github.com/college-transport-tracker/internal/delivery/http/handler"
	"github.com/college-transport-tracker/internal/domain/repository"
	"github.com/college-transport-tracker/internal/pkg/logger"
	"github.com/college-transport-tracker/internal/repository/cache"
	"github.com/college-transport-tracker/internal/repository/postgres"
	redisRepo "github.com/college-transport-tracker/internal/repository/redis"
	"github.com/college-transport-tracker/internal/usecase"
	"github.com/college-transport-tracker/web"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting College Transport Tracker")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("change_feed", cfg.Tracker.ChangeFeed),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()
	log.Info("PostgreSQL connected")

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories
	routeRepo := postgres.NewRouteRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	feed := newChangeFeed(cfg, redisClient, log)

	log.Info("Repositories initialized")

	// 7. Initialize Use Cases
	viewModel := usecase.NewRouteStatusViewModel(
		routeRepo,
		locationRepo,
		feed,
		cacheRepo,
		log,
		cfg.Cache.RouteStatusTTL,
		cfg.Tracker.RefreshTimeout,
	)
	routeUC := usecase.NewRouteUseCase(routeRepo, locationRepo, log, cfg.Tracker.HistoryLimit)
	locationUC := usecase.NewLocationUseCase(locationRepo, log)

	if err := viewModel.Start(ctx); err != nil {
		log.Fatal("Failed to start route status view model", zap.Error(err))
	}

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	templates, err := web.Templates()
	if err != nil {
		log.Fatal("Failed to parse page templates", zap.Error(err))
	}

	handlers := httpDelivery.Handlers{
		Page:        handler.NewPageHandler(templates, viewModel, routeUC, locationUC, log),
		RouteStatus: handler.NewRouteStatusHandler(viewModel, log, cfg.Tracker.SSEKeepAlive),
		Route:       handler.NewRouteHandler(routeUC, log),
		Location:    handler.NewLocationHandler(locationUC, viewModel, log),
		Health: handler.NewHealthHandler(map[string]handler.HealthChecker{
			"postgres": db,
			"redis":    redisClient,
		}, log),
	}

	log.Info("HTTP handlers initialized")

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, handlers)

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Dispose закрывает подписку и SSE потоки, иначе Shutdown ждёт их до таймаута
	if err := viewModel.Dispose(); err != nil {
		log.Error("Route status view model dispose error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}

// newChangeFeed выбирает источник уведомлений об изменениях
func newChangeFeed(cfg *config.Config, redisClient *cache.Redis, log *zap.Logger) repository.ChangeFeed {
	if cfg.Tracker.ChangeFeed == config.ChangeFeedRedis {
		streams := redisRepo.NewStreamRepository(redisClient.Client(), log, cfg.Worker.StreamReadTimeout)
		return redisRepo.NewStreamChangeFeed(streams, cfg.Worker.ConsumerGroup, log)
	}

	return postgres.NewChangeListener(
		cfg.Database.DSN(),
		cfg.Tracker.ListenerMinReconnect,
		cfg.Tracker.ListenerMaxReconnect,
		log,
	)
}
