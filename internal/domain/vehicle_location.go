package domain

import "time"

type LocationStatus string

const (
	StatusOnTime  LocationStatus = "on-time"
	StatusDelayed LocationStatus = "delayed"
	StatusArrived LocationStatus = "arrived"
)

// Label - подпись статуса на карточке маршрута
func (s LocationStatus) Label() string {
	switch s {
	case StatusDelayed:
		return "Delayed"
	case StatusArrived:
		return "Arrived"
	default:
		return "On Time"
	}
}

func (s LocationStatus) Valid() bool {
	switch s {
	case StatusOnTime, StatusDelayed, StatusArrived:
		return true
	}
	return false
}

// VehicleLocation - одна запись о положении транспорта на маршруте.
// Записи только добавляются, последняя определяется при чтении.
type VehicleLocation struct {
	ID              string         `json:"id" db:"id"`
	RouteID         string         `json:"route_id" db:"route_id"`
	CurrentLocation string         `json:"current_location" db:"current_location"`
	EstimatedTime   string         `json:"estimated_time" db:"estimated_time"`
	Status          LocationStatus `json:"status" db:"status"`
	Latitude        *float64       `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64       `json:"longitude,omitempty" db:"longitude"`
	LastUpdated     time.Time      `json:"last_updated" db:"last_updated"`
}

// NewerThan orders locations by last_updated, then by id. Ids are UUIDv7, so
// equal timestamps resolve to insertion order.
func (l VehicleLocation) NewerThan(other VehicleLocation) bool {
	if !l.LastUpdated.Equal(other.LastUpdated) {
		return l.LastUpdated.After(other.LastUpdated)
	}
	return l.ID > other.ID
}
