package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/config"
	"github.com/college-transport-tracker/internal/delivery/http/handler"
	"github.com/college-transport-tracker/internal/delivery/http/middleware"
	apperrors "github.com/college-transport-tracker/internal/pkg/errors"
	"github.com/college-transport-tracker/internal/pkg/utils"
)

const routeStatusStreamPath = "/api/v1/route-statuses/stream"

// Handlers - набор обработчиков, которые регистрирует сервер
type Handlers struct {
	Page        *handler.PageHandler
	RouteStatus *handler.RouteStatusHandler
	Route       *handler.RouteHandler
	Location    *handler.LocationHandler
	Health      *handler.HealthHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
}

// NewServer - создание нового HTTP сервера
func NewServer(cfg *config.Config, logger *zap.Logger, handlers Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName:     "College Transport Tracker",
		ReadTimeout: 10 * time.Second,
		// WriteTimeout не задан: SSE поток держит соединение открытым
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == routeStatusStreamPath
		},
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// HTML pages
	s.app.Get("/", s.handlers.Page.Index)
	s.app.Get("/admin", s.handlers.Page.Admin)
	s.app.Post("/admin/locations", s.handlers.Page.SubmitLocation)

	api := s.app.Group("/api/v1")

	api.Get("/health", s.handlers.Health.Health)

	// Routes
	api.Get("/routes", s.handlers.Route.ListRoutes)
	api.Get("/routes/:id/locations", s.handlers.Route.GetRouteLocations)

	// Route statuses
	api.Get("/route-statuses", s.handlers.RouteStatus.GetRouteStatuses)
	api.Post("/route-statuses/refresh", s.handlers.RouteStatus.RefreshRouteStatuses)
	api.Get("/route-statuses/stream", s.handlers.RouteStatus.StreamRouteStatuses)

	// Vehicle locations
	api.Post("/vehicle-locations", s.handlers.Location.SubmitLocation)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if _, ok := apperrors.As(err); ok {
			return utils.SendError(c, err)
		}

		code := fiber.StatusInternalServerError
		errCode := apperrors.ErrInternalServer.Code
		message := apperrors.ErrInternalServer.Message

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			errCode = "HTTP_ERROR"
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(utils.ErrorResponse{
			Error: apperrors.New(errCode, message, code),
		})
	}
}
