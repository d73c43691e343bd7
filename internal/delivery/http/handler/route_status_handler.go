package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/pkg/utils"
	"github.com/college-transport-tracker/internal/usecase"
	"github.com/college-transport-tracker/internal/usecase/dto"
)

// RouteStatusHandler отдаёт снимок статусов маршрутов и поток обновлений
type RouteStatusHandler struct {
	viewModel *usecase.RouteStatusViewModel
	logger    *zap.Logger
	keepAlive time.Duration
}

func NewRouteStatusHandler(viewModel *usecase.RouteStatusViewModel, logger *zap.Logger, keepAlive time.Duration) *RouteStatusHandler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &RouteStatusHandler{
		viewModel: viewModel,
		logger:    logger,
		keepAlive: keepAlive,
	}
}

// GetRouteStatuses godoc
// @Summary Current route statuses
// @Description Статус каждого активного маршрута с последним известным положением
// @Tags Route Status
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.RouteStatusesResponse}
// @Router /api/v1/route-statuses [get]
func (h *RouteStatusHandler) GetRouteStatuses(c *fiber.Ctx) error {
	return utils.SendSuccess(c, toStatusesResponse(h.viewModel.Snapshot()), nil)
}

// RefreshRouteStatuses godoc
// @Summary Refresh route statuses
// @Description Перечитывает маршруты и положения из хранилища
// @Tags Route Status
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.RouteStatusesResponse}
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/route-statuses/refresh [post]
func (h *RouteStatusHandler) RefreshRouteStatuses(c *fiber.Ctx) error {
	start := time.Now()

	snap, err := h.viewModel.Refresh(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, toStatusesResponse(*snap), &utils.Meta{
		Total:    len(snap.Statuses),
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// StreamRouteStatuses godoc
// @Summary Route status updates stream
// @Description Server-Sent Events: "snapshot" при каждом применённом обновлении, "notice" при ошибке загрузки
// @Tags Route Status
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /api/v1/route-statuses/stream [get]
func (h *RouteStatusHandler) StreamRouteStatuses(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	updates, cancel := h.viewModel.Watch()
	keepAlive := h.keepAlive
	logger := h.logger

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case u, ok := <-updates:
				if !ok {
					return
				}
				if err := writeUpdate(w, u); err != nil {
					logger.Debug("Route status stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func writeUpdate(w *bufio.Writer, u usecase.Update) error {
	var (
		event   string
		payload interface{}
	)
	switch {
	case u.Snapshot != nil:
		event, payload = "snapshot", toStatusesResponse(*u.Snapshot)
	case u.Notice != nil:
		event, payload = "notice", u.Notice
	default:
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}

func toStatusesResponse(snap usecase.Snapshot) dto.RouteStatusesResponse {
	resp := dto.RouteStatusesResponse{
		Routes:   dto.ConvertRouteStatuses(snap.Statuses),
		Sequence: snap.Sequence,
		Loaded:   snap.Loaded,
	}
	if !snap.UpdatedAt.IsZero() {
		updated := snap.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
