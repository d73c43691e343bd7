package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/domain/repository"
	apperrors "github.com/college-transport-tracker/internal/pkg/errors"
	"github.com/college-transport-tracker/internal/pkg/validator"
	"github.com/college-transport-tracker/internal/usecase/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LocationUseCase struct {
	locationRepo repository.LocationRepository
	logger       *zap.Logger
	now          func() time.Time
	newID        func() (uuid.UUID, error)
}

func NewLocationUseCase(
	locationRepo repository.LocationRepository,
	logger *zap.Logger,
) *LocationUseCase {
	return &LocationUseCase{
		locationRepo: locationRepo,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewV7,
	}
}

// SubmitLocation appends one vehicle location. Prior records of the route are
// never touched. Callers refresh their own view afterwards.
func (uc *LocationUseCase) SubmitLocation(
	ctx context.Context,
	req dto.SubmitLocationRequest,
) (*dto.SubmitLocationResponse, error) {
	req.Normalize()

	if err := validator.Validate(&req); err != nil {
		fields := validator.FieldErrors(err)
		uc.logger.Debug("Rejected location submission", zap.Strings("fields", fields))
		return nil, apperrors.ErrValidationFailure.Wrap(err).WithDetails(map[string]interface{}{
			"fields": fields,
		})
	}

	lat, err := parseOptionalFloat(req.Latitude)
	if err != nil {
		return nil, invalidField("latitude", err)
	}
	lon, err := parseOptionalFloat(req.Longitude)
	if err != nil {
		return nil, invalidField("longitude", err)
	}

	status := domain.LocationStatus(req.Status)
	if status == "" {
		status = domain.StatusOnTime
	}

	id, err := uc.newID()
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(fmt.Errorf("generate location id: %w", err))
	}

	loc := domain.VehicleLocation{
		ID:              id.String(),
		RouteID:         req.RouteID,
		CurrentLocation: req.Location,
		EstimatedTime:   req.EstimatedTime,
		Status:          status,
		Latitude:        lat,
		Longitude:       lon,
		LastUpdated:     uc.now().UTC(),
	}

	insertedID, err := uc.locationRepo.Insert(ctx, loc)
	if err != nil {
		uc.logger.Error("Failed to insert vehicle location",
			zap.String("route_id", loc.RouteID),
			zap.Error(err))
		return nil, apperrors.ErrWriteFailure.Wrap(err).WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	uc.logger.Info("Vehicle location submitted",
		zap.String("id", insertedID),
		zap.String("route_id", loc.RouteID),
		zap.String("status", string(loc.Status)))

	return &dto.SubmitLocationResponse{
		ID:          insertedID,
		RouteID:     loc.RouteID,
		LastUpdated: loc.LastUpdated,
	}, nil
}

// parseOptionalFloat returns nil for an empty string; absent is not zero.
func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func invalidField(field string, err error) error {
	return apperrors.ErrValidationFailure.Wrap(err).WithDetails(map[string]interface{}{
		"fields": []string{field},
	})
}
