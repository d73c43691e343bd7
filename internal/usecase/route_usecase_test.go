package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/domain"
	apperrors "github.com/college-transport-tracker/internal/pkg/errors"
	"github.com/college-transport-tracker/internal/usecase"
	"github.com/college-transport-tracker/internal/usecase/dto"
)

func TestRouteUseCase_ListActiveRoutes(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		uc := usecase.NewRouteUseCase(routeRepo, &MockLocationRepository{}, logger, 50)

		routeRepo.On("ListActive", ctx).Return([]domain.Route{
			{ID: "1", RouteNumber: "A1", RouteName: "North Campus Loop", IsActive: true},
			{ID: "2", RouteNumber: "B2", RouteName: "Downtown Express", IsActive: true},
		}, nil)

		resp, err := uc.ListActiveRoutes(ctx)

		require.NoError(t, err)
		require.Len(t, resp.Routes, 2)
		assert.Equal(t, "A1 - North Campus Loop", resp.Routes[0].Label())
		assert.Equal(t, "2", resp.Routes[1].ID)
		routeRepo.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		uc := usecase.NewRouteUseCase(routeRepo, &MockLocationRepository{}, logger, 50)

		routeRepo.On("ListActive", ctx).Return(nil, errors.New("timeout"))

		resp, err := uc.ListActiveRoutes(ctx)

		assert.Nil(t, resp)
		assert.True(t, errors.Is(err, apperrors.ErrFetchFailure))
	})
}

func TestRouteUseCase_GetLocationHistory(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	base := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)

	t.Run("uses default limit", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		locationRepo := &MockLocationRepository{}
		uc := usecase.NewRouteUseCase(routeRepo, locationRepo, logger, 50)

		history := []domain.VehicleLocation{locationAt("l1", "1", "Library", base)}
		routeRepo.On("GetByID", ctx, "1").Return(&domain.Route{ID: "1"}, nil)
		locationRepo.On("ListByRoute", ctx, "1", 50).Return(history, nil)

		resp, err := uc.GetLocationHistory(ctx, dto.LocationHistoryRequest{RouteID: "1"})

		require.NoError(t, err)
		assert.Equal(t, "1", resp.RouteID)
		assert.Equal(t, history, resp.Locations)
		routeRepo.AssertExpectations(t)
		locationRepo.AssertExpectations(t)
	})

	t.Run("explicit limit", func(t *testing.T) {
		store := newMemStore(activeRoute("1", "A1"))
		for i, where := range []string{"Main Gate", "Library", "Stadium"} {
			store.add(locationAt(where, "1", where, base.Add(time.Duration(i)*time.Minute)))
		}
		uc := usecase.NewRouteUseCase(store, store, logger, 50)

		resp, err := uc.GetLocationHistory(ctx, dto.LocationHistoryRequest{RouteID: "1", Limit: 2})

		require.NoError(t, err)
		require.Len(t, resp.Locations, 2)
		assert.Equal(t, "Stadium", resp.Locations[0].CurrentLocation)
		assert.Equal(t, "Library", resp.Locations[1].CurrentLocation)
	})

	t.Run("unknown route", func(t *testing.T) {
		store := newMemStore(activeRoute("1", "A1"))
		uc := usecase.NewRouteUseCase(store, store, logger, 50)

		_, err := uc.GetLocationHistory(ctx, dto.LocationHistoryRequest{RouteID: "42"})

		assert.True(t, errors.Is(err, apperrors.ErrRouteNotFound))
	})

	t.Run("invalid request", func(t *testing.T) {
		uc := usecase.NewRouteUseCase(newMemStore(), newMemStore(), logger, 50)

		_, err := uc.GetLocationHistory(ctx, dto.LocationHistoryRequest{RouteID: "1", Limit: 1000})

		assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest))
	})
}
