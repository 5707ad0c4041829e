package repository

import (
	"context"

	"carshare/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetPaidByRentalID retrieves the PAID payment for a rental.
	// Returns nil if the rental has no paid payment.
	GetPaidByRentalID(ctx context.Context, rentalID string) (*domain.Payment, error)

	// ListByCustomerID retrieves all payments for rentals owned by the customer.
	ListByCustomerID(ctx context.Context, customerID string) ([]*domain.Payment, error)

	// UpdateStatus updates the status of a payment. Returns ErrPaidConflict
	// when the transition to PAID would give the rental a second paid payment.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error
}
