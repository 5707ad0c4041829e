package repository

import (
	"context"
	"time"

	"carshare/internal/domain"
)

// RentalFilter narrows a rental listing. Zero values mean "no filter";
// both filters compose with AND semantics.
type RentalFilter struct {
	CustomerID string
	Active     *bool
}

// RentalRepository defines the persistence operations for rentals.
type RentalRepository interface {
	// Create persists a new rental. Returns ErrOpenRentalConflict when the
	// customer already has an open rental.
	Create(ctx context.Context, rental *domain.Rental) error

	// GetByID retrieves a rental by ID.
	GetByID(ctx context.Context, id string) (*domain.Rental, error)

	// List retrieves rentals matching the filter.
	List(ctx context.Context, filter RentalFilter) ([]*domain.Rental, error)

	// GetOpenByCustomerID retrieves the customer's open rental.
	// Returns nil if the customer has no open rental.
	GetOpenByCustomerID(ctx context.Context, customerID string) (*domain.Rental, error)

	// Close sets the actual return date on an open rental. The update is
	// conditional on the rental still being open; closing a closed rental
	// returns ErrAlreadyClosed.
	Close(ctx context.Context, id string, returnedAt time.Time) error
}
