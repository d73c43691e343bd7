package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/domain/repository"
)

const routeStatusKey = "route_status:current"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// CacheRepository implements both the generic key/value cache and the
// route status snapshot cache.
type CacheRepository interface {
	repository.CacheRepository
	repository.RouteStatusCache
}

func NewCacheRepository(r *Redis) CacheRepository {
	return &cacheRepository{
		client: r.Client(),
		logger: r.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	return nil
}

// GetRouteStatuses получает последний снимок статусов из кеша
func (r *cacheRepository) GetRouteStatuses(ctx context.Context) ([]domain.RouteStatus, error) {
	data, err := r.Get(ctx, routeStatusKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var statuses []domain.RouteStatus
	if err := json.Unmarshal(data, &statuses); err != nil {
		r.logger.Error("Failed to unmarshal route statuses from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal route statuses: %w", err)
	}
	if statuses == nil {
		statuses = []domain.RouteStatus{}
	}

	return statuses, nil
}

// SetRouteStatuses сохраняет снимок статусов в кеше
func (r *cacheRepository) SetRouteStatuses(ctx context.Context, statuses []domain.RouteStatus, ttl time.Duration) error {
	if statuses == nil {
		statuses = []domain.RouteStatus{}
	}
	data, err := json.Marshal(statuses)
	if err != nil {
		return fmt.Errorf("marshal route statuses: %w", err)
	}

	return r.Set(ctx, routeStatusKey, data, ttl)
}
