package dto

import "strings"

// SubmitLocationRequest - ручное добавление положения транспорта из формы администратора.
// Координаты приходят текстом, как из полей формы; пустая строка означает отсутствие значения.
type SubmitLocationRequest struct {
	RouteID       string `json:"route_id" form:"route_id" validate:"required"`
	Location      string `json:"current_location" form:"current_location" validate:"required"`
	EstimatedTime string `json:"estimated_time" form:"estimated_time" validate:"required"`
	Status        string `json:"status" form:"status" validate:"omitempty,oneof=on-time delayed arrived"`
	Latitude      string `json:"latitude,omitempty" form:"latitude" validate:"omitempty,latitude"`
	Longitude     string `json:"longitude,omitempty" form:"longitude" validate:"omitempty,longitude"`
}

// Normalize trims surrounding whitespace from every field.
func (r *SubmitLocationRequest) Normalize() {
	r.RouteID = strings.TrimSpace(r.RouteID)
	r.Location = strings.TrimSpace(r.Location)
	r.EstimatedTime = strings.TrimSpace(r.EstimatedTime)
	r.Status = strings.TrimSpace(r.Status)
	r.Latitude = strings.TrimSpace(r.Latitude)
	r.Longitude = strings.TrimSpace(r.Longitude)
}

// LocationHistoryRequest - запрос истории положений маршрута
type LocationHistoryRequest struct {
	RouteID string `json:"route_id" validate:"required"`
	Limit   int    `json:"limit" validate:"omitempty,min=1,max=500"`
}
