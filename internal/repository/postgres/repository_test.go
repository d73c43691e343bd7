package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/domain/repository"
	apperrors "github.com/college-transport-tracker/internal/pkg/errors"
	"github.com/college-transport-tracker/internal/repository/postgres/testhelpers"
)

const (
	routeT2      = "11111111-1111-4111-8111-111111111111"
	routeT1      = "22222222-2222-4222-8222-222222222222"
	routeRetired = "33333333-3333-4333-8333-333333333333"
)

// RepositoryTestSuite covers the route and location repositories against a
// real database.
type RepositoryTestSuite struct {
	suite.Suite
	testDB    *testhelpers.TestDB
	routes    repository.RouteRepository
	locations repository.LocationRepository
	ctx       context.Context
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())

	_, err := testhelpers.ApplyMigrations(s.testDB.DB.DB, "../../../migrations")
	s.Require().NoError(err, "Failed to apply migrations")

	s.routes = testhelpers.NewRouteRepositoryForTest(s.testDB.DB, s.testDB.Logger)
	s.locations = testhelpers.NewLocationRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	s.Require().NoError(s.testDB.Cleanup(s.ctx))
	s.Require().NoError(testhelpers.LoadFixtures(s.testDB.DB.DB, "testdata", []string{"routes.sql"}))
}

func (s *RepositoryTestSuite) insert(routeID, where string, at time.Time) string {
	id, err := uuid.NewV7()
	s.Require().NoError(err)

	inserted, err := s.locations.Insert(s.ctx, domain.VehicleLocation{
		ID:              id.String(),
		RouteID:         routeID,
		CurrentLocation: where,
		EstimatedTime:   "5 mins",
		Status:          domain.StatusOnTime,
		LastUpdated:     at,
	})
	s.Require().NoError(err)
	return inserted
}

func (s *RepositoryTestSuite) TestListActive_OrderedByRouteNumber() {
	routes, err := s.routes.ListActive(s.ctx)

	s.Require().NoError(err)
	s.Require().Len(routes, 2)
	s.Equal("T1", routes[0].RouteNumber)
	s.Equal(routeT1, routes[0].ID)
	s.Equal(domain.VehicleBus, routes[0].VehicleType)
	s.Equal("T2", routes[1].RouteNumber)
	s.Equal(domain.VehicleVan, routes[1].VehicleType)
	s.True(routes[1].IsActive)
}

func (s *RepositoryTestSuite) TestGetByID() {
	route, err := s.routes.GetByID(s.ctx, routeT2)
	s.Require().NoError(err)
	s.Equal("Test Southern Loop", route.RouteName)

	_, err = s.routes.GetByID(s.ctx, routeRetired)
	s.True(errors.Is(err, apperrors.ErrRouteNotFound))

	_, err = s.routes.GetByID(s.ctx, "not-a-uuid")
	s.True(errors.Is(err, apperrors.ErrRouteNotFound))
}

func (s *RepositoryTestSuite) TestInsertAndListNewestFirst() {
	base := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	s.insert(routeT1, "Main Gate", base)
	s.insert(routeT2, "Stadium", base.Add(2*time.Minute))
	s.insert(routeT1, "Library", base.Add(time.Minute))

	locs, err := s.locations.ListNewestFirst(s.ctx)

	s.Require().NoError(err)
	s.Require().Len(locs, 3)
	s.Equal("Stadium", locs[0].CurrentLocation)
	s.Equal("Library", locs[1].CurrentLocation)
	s.Equal("Main Gate", locs[2].CurrentLocation)
	s.Equal(routeT1, locs[1].RouteID)
	s.Nil(locs[0].Latitude)
	s.True(locs[2].LastUpdated.Equal(base))
}

func (s *RepositoryTestSuite) TestListNewestFirst_TieBreaksOnID() {
	at := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	first := s.insert(routeT1, "First", at)
	second := s.insert(routeT1, "Second", at)
	s.Less(first, second)

	locs, err := s.locations.ListNewestFirst(s.ctx)

	s.Require().NoError(err)
	s.Require().Len(locs, 2)
	s.Equal(second, locs[0].ID)
}

func (s *RepositoryTestSuite) TestInsert_KeepsCoordinates() {
	lat, lon := 40.7128, -74.0060
	id, err := uuid.NewV7()
	s.Require().NoError(err)

	_, err = s.locations.Insert(s.ctx, domain.VehicleLocation{
		ID:              id.String(),
		RouteID:         routeT2,
		CurrentLocation: "Library",
		EstimatedTime:   "5 mins",
		Status:          domain.StatusDelayed,
		Latitude:        &lat,
		Longitude:       &lon,
		LastUpdated:     time.Now().UTC(),
	})
	s.Require().NoError(err)

	locs, err := s.locations.ListByRoute(s.ctx, routeT2, 10)
	s.Require().NoError(err)
	s.Require().Len(locs, 1)
	s.Require().NotNil(locs[0].Latitude)
	s.InDelta(lat, *locs[0].Latitude, 1e-9)
	s.InDelta(lon, *locs[0].Longitude, 1e-9)
	s.Equal(domain.StatusDelayed, locs[0].Status)
}

func (s *RepositoryTestSuite) TestInsert_UnknownRouteFails() {
	id, err := uuid.NewV7()
	s.Require().NoError(err)

	_, err = s.locations.Insert(s.ctx, domain.VehicleLocation{
		ID:              id.String(),
		RouteID:         "44444444-4444-4444-8444-444444444444",
		CurrentLocation: "Library",
		EstimatedTime:   "5 mins",
		Status:          domain.StatusOnTime,
		LastUpdated:     time.Now().UTC(),
	})

	s.Error(err)
}

func (s *RepositoryTestSuite) TestListByRoute_Limit() {
	base := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	for i, where := range []string{"Main Gate", "Library", "Stadium"} {
		s.insert(routeT1, where, base.Add(time.Duration(i)*time.Minute))
	}
	s.insert(routeT2, "Depot", base.Add(time.Hour))

	locs, err := s.locations.ListByRoute(s.ctx, routeT1, 2)

	s.Require().NoError(err)
	s.Require().Len(locs, 2)
	s.Equal("Stadium", locs[0].CurrentLocation)
	s.Equal("Library", locs[1].CurrentLocation)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
