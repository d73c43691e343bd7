package dto

import (
	"time"

	"github.com/college-transport-tracker/internal/domain"
)

// RouteStatusCard - данные одной карточки маршрута, готовые к отображению
type RouteStatusCard struct {
	RouteID         string     `json:"route_id"`
	RouteNumber     string     `json:"route_number"`
	RouteName       string     `json:"route_name"`
	VehicleType     string     `json:"vehicle_type"`
	VehicleLabel    string     `json:"vehicle_label"`
	CurrentLocation string     `json:"current_location"`
	EstimatedTime   string     `json:"estimated_time"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"status_label"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	LastUpdated     *time.Time `json:"last_updated,omitempty"`
}

// RouteStatusesResponse - снимок статусов всех активных маршрутов
type RouteStatusesResponse struct {
	Routes    []RouteStatusCard `json:"routes"`
	Sequence  uint64            `json:"sequence"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
	Loaded    bool              `json:"loaded"`
}

// RouteOption - маршрут для выпадающего списка формы
type RouteOption struct {
	ID          string `json:"id"`
	RouteNumber string `json:"route_number"`
	RouteName   string `json:"route_name"`
}

// Label renders "A1 - North Campus Loop".
func (o RouteOption) Label() string {
	return o.RouteNumber + " - " + o.RouteName
}

type RouteListResponse struct {
	Routes []RouteOption `json:"routes"`
}

// SubmitLocationResponse - результат успешной вставки
type SubmitLocationResponse struct {
	ID          string    `json:"id"`
	RouteID     string    `json:"route_id"`
	LastUpdated time.Time `json:"last_updated"`
}

// LocationHistoryResponse - история положений маршрута, новые первыми
type LocationHistoryResponse struct {
	RouteID   string                   `json:"route_id"`
	Locations []domain.VehicleLocation `json:"locations"`
}

// ConvertRouteStatus builds a card applying the display fallbacks.
func ConvertRouteStatus(s domain.RouteStatus) RouteStatusCard {
	card := RouteStatusCard{
		RouteID:         s.Route.ID,
		RouteNumber:     s.Route.RouteNumber,
		RouteName:       s.Route.RouteName,
		VehicleType:     string(s.Route.VehicleType),
		VehicleLabel:    s.Route.VehicleType.Label(),
		CurrentLocation: s.CurrentLocation(),
		EstimatedTime:   s.EstimatedTime(),
		Status:          string(s.Status()),
		StatusLabel:     s.Status().Label(),
	}

	if s.Location != nil {
		card.Latitude = s.Location.Latitude
		card.Longitude = s.Location.Longitude
		updated := s.Location.LastUpdated
		card.LastUpdated = &updated
	}

	return card
}

func ConvertRouteStatuses(statuses []domain.RouteStatus) []RouteStatusCard {
	cards := make([]RouteStatusCard, 0, len(statuses))
	for _, s := range statuses {
		cards = append(cards, ConvertRouteStatus(s))
	}
	return cards
}

func ConvertRouteOptions(routes []domain.Route) []RouteOption {
	options := make([]RouteOption, 0, len(routes))
	for _, r := range routes {
		options = append(options, RouteOption{
			ID:          r.ID,
			RouteNumber: r.RouteNumber,
			RouteName:   r.RouteName,
		})
	}
	return options
}
