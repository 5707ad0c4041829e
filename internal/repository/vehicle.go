package repository

import (
	"context"

	"carshare/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
// ReserveUnit and ReleaseUnit form the inventory ledger: both are single
// atomic read-modify-write statements against the backing store.
type VehicleRepository interface {
	// Create adds a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID. Soft-deleted vehicles are not returned.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetAll retrieves all non-deleted vehicles.
	GetAll(ctx context.Context) ([]*domain.Vehicle, error)

	// Update updates the mutable attributes of a vehicle. Inventory is not
	// touched here; it changes only through ReserveUnit/ReleaseUnit.
	Update(ctx context.Context, vehicle *domain.Vehicle) error

	// SoftDelete marks a vehicle as deleted without removing its rows.
	SoftDelete(ctx context.Context, id string) error

	// ReserveUnit atomically decrements the vehicle's available unit count.
	// Returns ErrNoInventory when no units are available and ErrNotFound when
	// the vehicle does not exist.
	ReserveUnit(ctx context.Context, id string) error

	// ReleaseUnit atomically increments the vehicle's available unit count.
	ReleaseUnit(ctx context.Context, id string) error
}
