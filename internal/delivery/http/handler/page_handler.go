package handler

import (
	"context"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/domain"
	apperrors "github.com/college-transport-tracker/internal/pkg/errors"
	"github.com/college-transport-tracker/internal/usecase"
	"github.com/college-transport-tracker/internal/usecase/dto"
)

// Flash - всплывающее уведомление на странице
type Flash struct {
	Kind    string
	Title   string
	Message string
}

// IndexPageData - данные для шаблона главной страницы
type IndexPageData struct {
	Title        string
	Cards        []dto.RouteStatusCard
	ActiveRoutes int
	Loaded       bool
	Flash        *Flash
}

// StatusOption - вариант статуса в форме
type StatusOption struct {
	Value string
	Label string
}

// AdminPageData - данные для шаблона формы администратора
type AdminPageData struct {
	Title    string
	Routes   []dto.RouteOption
	Statuses []StatusOption
	Form     dto.SubmitLocationRequest
	Flash    *Flash
}

var statusOptions = []StatusOption{
	{Value: string(domain.StatusOnTime), Label: domain.StatusOnTime.Label()},
	{Value: string(domain.StatusDelayed), Label: domain.StatusDelayed.Label()},
	{Value: string(domain.StatusArrived), Label: domain.StatusArrived.Label()},
}

// PageHandler рендерит HTML страницы: трекер маршрутов и форму администратора
type PageHandler struct {
	templates  *template.Template
	viewModel  *usecase.RouteStatusViewModel
	routeUC    *usecase.RouteUseCase
	locationUC *usecase.LocationUseCase
	logger     *zap.Logger
}

func NewPageHandler(
	templates *template.Template,
	viewModel *usecase.RouteStatusViewModel,
	routeUC *usecase.RouteUseCase,
	locationUC *usecase.LocationUseCase,
	logger *zap.Logger,
) *PageHandler {
	return &PageHandler{
		templates:  templates,
		viewModel:  viewModel,
		routeUC:    routeUC,
		locationUC: locationUC,
		logger:     logger,
	}
}

// Index - главная страница с карточками маршрутов
func (h *PageHandler) Index(c *fiber.Ctx) error {
	snap := h.viewModel.Snapshot()
	cards := dto.ConvertRouteStatuses(snap.Statuses)

	data := IndexPageData{
		Title:        "College Transport Tracker",
		Cards:        cards,
		ActiveRoutes: len(cards),
		Loaded:       snap.Loaded,
	}
	if !snap.Loaded {
		data.Flash = &Flash{
			Kind:    "error",
			Title:   "Error loading routes",
			Message: apperrors.ErrFetchFailure.Message,
		}
	}

	return h.render(c, "index.html", data)
}

// Admin - форма ручного обновления положения транспорта
func (h *PageHandler) Admin(c *fiber.Ctx) error {
	var flash *Flash
	if c.Query("updated") == "1" {
		flash = &Flash{
			Kind:    "success",
			Title:   "Location updated",
			Message: "Vehicle location has been updated successfully",
		}
	}

	return h.renderAdmin(c, dto.SubmitLocationRequest{Status: string(domain.StatusOnTime)}, flash)
}

// SubmitLocation - обработка формы; после успеха редирект, чтобы повторная
// отправка формы не создавала дубль
func (h *PageHandler) SubmitLocation(c *fiber.Ctx) error {
	var req dto.SubmitLocationRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn("Failed to parse admin form", zap.Error(err))
		c.Status(fiber.StatusBadRequest)
		return h.renderAdmin(c, req, &Flash{
			Kind:    "error",
			Title:   "Missing fields",
			Message: apperrors.ErrValidationFailure.Message,
		})
	}

	ctx := c.Context()
	if _, err := h.locationUC.SubmitLocation(ctx, req); err != nil {
		flash := &Flash{Kind: "error", Title: "Error updating location", Message: err.Error()}
		status := fiber.StatusInternalServerError

		if appErr, ok := apperrors.As(err); ok {
			status = appErr.StatusCode
			switch appErr.Code {
			case apperrors.CodeValidationFailure:
				flash.Title = "Missing fields"
				flash.Message = appErr.Message
			case apperrors.CodeWriteFailure:
				if reason, ok := appErr.Details["reason"].(string); ok {
					flash.Message = reason
				}
			}
		}

		c.Status(status)
		return h.renderAdmin(c, req, flash)
	}

	refreshAfterWrite(ctx, h.viewModel, h.logger)

	return c.Redirect("/admin?updated=1", fiber.StatusSeeOther)
}

func (h *PageHandler) renderAdmin(c *fiber.Ctx, form dto.SubmitLocationRequest, flash *Flash) error {
	data := AdminPageData{
		Title:    "Admin - Update Vehicle Location",
		Statuses: statusOptions,
		Form:     form,
		Flash:    flash,
	}

	routes, err := h.routeUC.ListActiveRoutes(c.Context())
	if err != nil {
		h.logger.Warn("Failed to load routes for admin form", zap.Error(err))
		if data.Flash == nil {
			data.Flash = &Flash{Kind: "error", Title: "Error loading routes", Message: apperrors.ErrFetchFailure.Message}
		}
	} else {
		data.Routes = routes.Routes
	}

	return h.render(c, "admin.html", data)
}

func (h *PageHandler) render(c *fiber.Ctx, name string, data interface{}) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	if err := h.templates.ExecuteTemplate(c.Response().BodyWriter(), name, data); err != nil {
		h.logger.Error("Failed to render page", zap.String("template", name), zap.Error(err))
		return err
	}
	return nil
}

// refreshAfterWrite brings the view model up to date after a successful
// insert. A failed refresh is reported to watchers by the view model itself.
func refreshAfterWrite(ctx context.Context, vm *usecase.RouteStatusViewModel, logger *zap.Logger) {
	if _, err := vm.Refresh(ctx); err != nil {
		logger.Warn("Refresh after location submit failed", zap.Error(err))
	}
}
