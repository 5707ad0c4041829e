package repository

import (
	"context"

	"carshare/internal/domain"
)

// CustomerRepository is a read-only view over customer records owned by the
// external identity provider.
type CustomerRepository interface {
	// GetByID retrieves a customer by ID.
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}
