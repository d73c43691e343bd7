package domain

// Collections of the backing store
const (
	CollectionRoutes           = "routes"
	CollectionVehicleLocations = "vehicle_locations"
)

type VehicleType string

const (
	VehicleBus VehicleType = "bus"
	VehicleVan VehicleType = "van"
)

// Label - подпись типа транспорта на карточке маршрута
func (v VehicleType) Label() string {
	if v == VehicleBus {
		return "Bus"
	}
	return "Van"
}

// Route - маршрут транспорта колледжа
type Route struct {
	ID          string      `json:"id" db:"id"`
	RouteNumber string      `json:"route_number" db:"route_number"`
	RouteName   string      `json:"route_name" db:"route_name"`
	VehicleType VehicleType `json:"vehicle_type" db:"vehicle_type"`
	IsActive    bool        `json:"is_active" db:"is_active"`
}
