package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/pkg/errors"
	"github.com/college-transport-tracker/internal/pkg/utils"
	"github.com/college-transport-tracker/internal/usecase"
	"github.com/college-transport-tracker/internal/usecase/dto"
)

// LocationHandler принимает новые положения транспорта через JSON API
type LocationHandler struct {
	locationUC *usecase.LocationUseCase
	viewModel  *usecase.RouteStatusViewModel
	logger     *zap.Logger
}

func NewLocationHandler(locationUC *usecase.LocationUseCase, viewModel *usecase.RouteStatusViewModel, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{
		locationUC: locationUC,
		viewModel:  viewModel,
		logger:     logger,
	}
}

// SubmitLocation godoc
// @Summary Submit vehicle location
// @Description Добавляет новую запись о положении транспорта. Предыдущие записи не изменяются.
// @Tags Vehicle Locations
// @Accept json
// @Produce json
// @Param request body dto.SubmitLocationRequest true "Location"
// @Success 201 {object} utils.SuccessResponse{data=dto.SubmitLocationResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/vehicle-locations [post]
func (h *LocationHandler) SubmitLocation(c *fiber.Ctx) error {
	var req dto.SubmitLocationRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn("Failed to parse request body", zap.Error(err))
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	ctx := c.Context()
	resp, err := h.locationUC.SubmitLocation(ctx, req)
	if err != nil {
		return utils.SendError(c, err)
	}

	refreshAfterWrite(ctx, h.viewModel, h.logger)

	return utils.SendCreated(c, resp)
}
