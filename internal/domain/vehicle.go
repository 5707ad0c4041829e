package domain

// VehicleType represents the body classification of a vehicle.
type VehicleType string

const (
	VehicleTypeSedan     VehicleType = "SEDAN"
	VehicleTypeSUV       VehicleType = "SUV"
	VehicleTypeHatchback VehicleType = "HATCHBACK"
	VehicleTypeUniversal VehicleType = "UNIVERSAL"
)

// Vehicle represents a rentable vehicle model in the fleet.
// Inventory is the authoritative count of units currently available for
// rent; it is mutated only through the atomic reserve/release operations.
type Vehicle struct {
	ID        string
	Brand     string
	Model     string
	Type      VehicleType
	Inventory int
	DailyFee  float64
	Deleted   bool
}
