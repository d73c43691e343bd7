package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/domain/repository"
	"github.com/college-transport-tracker/internal/repository/postgres"
)

// NewRouteRepositoryForTest creates a route repository over the test database
func NewRouteRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.RouteRepository {
	return postgres.NewRouteRepository(postgres.NewDBForTest(db, logger))
}

// NewLocationRepositoryForTest creates a location repository over the test database
func NewLocationRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.LocationRepository {
	return postgres.NewLocationRepository(postgres.NewDBForTest(db, logger))
}
