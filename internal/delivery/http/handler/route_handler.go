package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/pkg/utils"
	"github.com/college-transport-tracker/internal/usecase"
	"github.com/college-transport-tracker/internal/usecase/dto"
)

// RouteHandler обрабатывает запросы по маршрутам
type RouteHandler struct {
	routeUC *usecase.RouteUseCase
	logger  *zap.Logger
}

func NewRouteHandler(routeUC *usecase.RouteUseCase, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		routeUC: routeUC,
		logger:  logger,
	}
}

// ListRoutes godoc
// @Summary List active routes
// @Description Активные маршруты по возрастанию номера
// @Tags Routes
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.RouteListResponse}
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/routes [get]
func (h *RouteHandler) ListRoutes(c *fiber.Ctx) error {
	resp, err := h.routeUC.ListActiveRoutes(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: len(resp.Routes)})
}

// GetRouteLocations godoc
// @Summary Route location history
// @Description Последние положения транспорта на маршруте, новые первыми
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Param limit query int false "Max records (1-500)"
// @Success 200 {object} utils.SuccessResponse{data=dto.LocationHistoryResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{id}/locations [get]
func (h *RouteHandler) GetRouteLocations(c *fiber.Ctx) error {
	req := dto.LocationHistoryRequest{
		RouteID: c.Params("id"),
		Limit:   c.QueryInt("limit", 0),
	}

	resp, err := h.routeUC.GetLocationHistory(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: len(resp.Locations)})
}
