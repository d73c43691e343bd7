package usecase

import "github.com/college-transport-tracker/internal/domain"

// BuildRouteStatuses pairs every active route with its newest location.
//
// The output follows the order of routes. Locations are expected newest first,
// but the newest one is chosen by NewerThan regardless of input order, so ties
// on last_updated resolve to the higher id. Inactive routes are skipped.
func BuildRouteStatuses(routes []domain.Route, locations []domain.VehicleLocation) []domain.RouteStatus {
	latest := make(map[string]domain.VehicleLocation, len(routes))
	for _, loc := range locations {
		cur, ok := latest[loc.RouteID]
		if !ok || loc.NewerThan(cur) {
			latest[loc.RouteID] = loc
		}
	}

	statuses := make([]domain.RouteStatus, 0, len(routes))
	for _, route := range routes {
		if !route.IsActive {
			continue
		}

		status := domain.RouteStatus{Route: route}
		if loc, ok := latest[route.ID]; ok {
			loc := loc
			status.Location = &loc
		}
		statuses = append(statuses, status)
	}

	return statuses
}
