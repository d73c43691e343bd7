package repository

import (
	"context"
	"time"

	"github.com/college-transport-tracker/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error
}

// RouteStatusCache хранит последний успешно полученный снимок статусов
type RouteStatusCache interface {
	// GetRouteStatuses возвращает nil, nil при промахе кеша
	GetRouteStatuses(ctx context.Context) ([]domain.RouteStatus, error)

	SetRouteStatuses(ctx context.Context, statuses []domain.RouteStatus, ttl time.Duration) error
}
