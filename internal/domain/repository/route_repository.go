package repository

import (
	"context"

	"github.com/college-transport-tracker/internal/domain"
)

// RouteRepository определяет методы чтения маршрутов
type RouteRepository interface {
	// ListActive возвращает активные маршруты, отсортированные по route_number
	ListActive(ctx context.Context) ([]domain.Route, error)

	// GetByID возвращает маршрут по идентификатору
	GetByID(ctx context.Context, id string) (*domain.Route, error)
}
