package domain

const (
	FallbackLocation = "Unknown"
	FallbackETA      = "N/A"
	FallbackStatus   = StatusOnTime
)

// RouteStatus pairs a route with its most recent location, if any.
// It is derived on every refresh and never persisted as a source of truth.
type RouteStatus struct {
	Route    Route            `json:"route"`
	Location *VehicleLocation `json:"location,omitempty"`
}

func (s RouteStatus) CurrentLocation() string {
	if s.Location == nil || s.Location.CurrentLocation == "" {
		return FallbackLocation
	}
	return s.Location.CurrentLocation
}

func (s RouteStatus) EstimatedTime() string {
	if s.Location == nil || s.Location.EstimatedTime == "" {
		return FallbackETA
	}
	return s.Location.EstimatedTime
}

func (s RouteStatus) Status() LocationStatus {
	if s.Location == nil || s.Location.Status == "" {
		return FallbackStatus
	}
	return s.Location.Status
}
