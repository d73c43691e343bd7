package usecase

import (
	"context"
	stderrors "errors"

	"github.com/college-transport-tracker/internal/domain/repository"
	apperrors "github.com/college-transport-tracker/internal/pkg/errors"
	"github.com/college-transport-tracker/internal/pkg/validator"
	"github.com/college-transport-tracker/internal/usecase/dto"
	"go.uber.org/zap"
)

type RouteUseCase struct {
	routeRepo    repository.RouteRepository
	locationRepo repository.LocationRepository
	logger       *zap.Logger
	historyLimit int
}

func NewRouteUseCase(
	routeRepo repository.RouteRepository,
	locationRepo repository.LocationRepository,
	logger *zap.Logger,
	historyLimit int,
) *RouteUseCase {
	return &RouteUseCase{
		routeRepo:    routeRepo,
		locationRepo: locationRepo,
		logger:       logger,
		historyLimit: historyLimit,
	}
}

// ListActiveRoutes - маршруты для выбора в форме администратора
func (uc *RouteUseCase) ListActiveRoutes(ctx context.Context) (*dto.RouteListResponse, error) {
	routes, err := uc.routeRepo.ListActive(ctx)
	if err != nil {
		uc.logger.Error("Failed to list active routes", zap.Error(err))
		return nil, apperrors.ErrFetchFailure.Wrap(err)
	}

	return &dto.RouteListResponse{
		Routes: dto.ConvertRouteOptions(routes),
	}, nil
}

// GetLocationHistory - последние записи о положении транспорта на маршруте
func (uc *RouteUseCase) GetLocationHistory(
	ctx context.Context,
	req dto.LocationHistoryRequest,
) (*dto.LocationHistoryResponse, error) {
	if err := validator.Validate(&req); err != nil {
		return nil, apperrors.ErrInvalidRequest.Wrap(err).WithDetails(map[string]interface{}{
			"fields": validator.FieldErrors(err),
		})
	}

	limit := req.Limit
	if limit == 0 {
		limit = uc.historyLimit
	}

	if _, err := uc.routeRepo.GetByID(ctx, req.RouteID); err != nil {
		if stderrors.Is(err, apperrors.ErrRouteNotFound) {
			return nil, apperrors.ErrRouteNotFound
		}
		uc.logger.Error("Failed to get route", zap.String("route_id", req.RouteID), zap.Error(err))
		return nil, apperrors.ErrFetchFailure.Wrap(err)
	}

	locations, err := uc.locationRepo.ListByRoute(ctx, req.RouteID, limit)
	if err != nil {
		uc.logger.Error("Failed to list route locations", zap.String("route_id", req.RouteID), zap.Error(err))
		return nil, apperrors.ErrFetchFailure.Wrap(err)
	}

	return &dto.LocationHistoryResponse{
		RouteID:   req.RouteID,
		Locations: locations,
	}, nil
}
