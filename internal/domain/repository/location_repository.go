package repository

import (
	"context"

	"github.com/college-transport-tracker/internal/domain"
)

// LocationRepository определяет методы работы с историей положений транспорта
type LocationRepository interface {
	// ListNewestFirst возвращает все записи, новые первыми (last_updated DESC, id DESC)
	ListNewestFirst(ctx context.Context) ([]domain.VehicleLocation, error)

	// ListByRoute возвращает до limit последних записей маршрута
	ListByRoute(ctx context.Context, routeID string, limit int) ([]domain.VehicleLocation, error)

	// Insert добавляет новую запись и возвращает её идентификатор
	Insert(ctx context.Context, loc domain.VehicleLocation) (string, error)
}
