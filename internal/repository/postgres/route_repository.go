package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/domain/repository"
	"github.com/college-transport-tracker/internal/pkg/errors"
)

const routeColumns = `id::text AS id, route_number, route_name, vehicle_type, is_active`

type routeRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewRouteRepository(db *DB) repository.RouteRepository {
	return &routeRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// ListActive - активные маршруты по возрастанию номера
func (r *routeRepository) ListActive(ctx context.Context) ([]domain.Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes
		WHERE is_active = true
		ORDER BY route_number ASC, id ASC
	`

	routes := []domain.Route{}
	if err := r.db.SelectContext(ctx, &routes, query); err != nil {
		r.logger.Error("Failed to list active routes", zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	return routes, nil
}

// GetByID returns ErrRouteNotFound for unknown and inactive routes.
func (r *routeRepository) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes
		WHERE id::text = $1 AND is_active = true
	`

	var route domain.Route
	if err := r.db.GetContext(ctx, &route, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrRouteNotFound
		}
		r.logger.Error("Failed to get route", zap.String("id", id), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	return &route, nil
}
