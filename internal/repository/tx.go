package repository

import "context"

// Repositories bundles the transaction-scoped repositories handed to a
// TxManager callback. All writes performed through them commit or roll
// back together.
type Repositories struct {
	Vehicles VehicleRepository
	Rentals  RentalRepository
	Payments PaymentRepository
}

// TxManager runs a function within a single database transaction.
// The transaction is rolled back when fn returns an error.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}
