package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/domain/repository"
	"github.com/college-transport-tracker/internal/pkg/errors"
)

const (
	locationColumns = `
		id::text AS id, route_id::text AS route_id, current_location, estimated_time,
		status, latitude, longitude, last_updated`

	// uuid comparison is bytewise, so id DESC follows UUIDv7 insertion order
	newestFirst = `ORDER BY last_updated DESC, id DESC`
)

type locationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewLocationRepository(db *DB) repository.LocationRepository {
	return &locationRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *locationRepository) ListNewestFirst(ctx context.Context) ([]domain.VehicleLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM vehicle_locations ` + newestFirst

	locations := []domain.VehicleLocation{}
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		r.logger.Error("Failed to list vehicle locations", zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	return locations, nil
}

func (r *locationRepository) ListByRoute(ctx context.Context, routeID string, limit int) ([]domain.VehicleLocation, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM vehicle_locations
		WHERE route_id::text = $1
		` + newestFirst + `
		LIMIT $2
	`

	locations := []domain.VehicleLocation{}
	if err := r.db.SelectContext(ctx, &locations, query, routeID, limit); err != nil {
		r.logger.Error("Failed to list route locations",
			zap.String("route_id", routeID),
			zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	return locations, nil
}

// Insert appends a record. The caller assigns id and last_updated.
func (r *locationRepository) Insert(ctx context.Context, loc domain.VehicleLocation) (string, error) {
	query := `
		INSERT INTO vehicle_locations (
			id, route_id, current_location, estimated_time,
			status, latitude, longitude, last_updated
		) VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8)
		RETURNING id::text
	`

	var id string
	err := r.db.QueryRowxContext(ctx, query,
		loc.ID, loc.RouteID, loc.CurrentLocation, loc.EstimatedTime,
		string(loc.Status), loc.Latitude, loc.Longitude, loc.LastUpdated,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert vehicle location: %w", err)
	}

	return id, nil
}
