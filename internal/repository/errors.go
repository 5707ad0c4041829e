package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrNoInventory is returned when a reservation is attempted against a
	// vehicle with zero available units.
	ErrNoInventory = errors.New("no inventory available")

	// ErrOpenRentalConflict is returned when inserting a rental violates the
	// one-open-rental-per-customer constraint.
	ErrOpenRentalConflict = errors.New("customer already has an open rental")

	// ErrAlreadyClosed is returned when closing a rental that already has an
	// actual return date.
	ErrAlreadyClosed = errors.New("rental already closed")

	// ErrPaidConflict is returned when marking a payment paid violates the
	// at-most-one-paid-payment-per-rental constraint.
	ErrPaidConflict = errors.New("rental already has a paid payment")
)
