package service

import "errors"

var (
	// ErrInvalidCustomerID is returned when customer ID is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidVehicleID is returned when vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidRentalID is returned when rental ID is empty.
	ErrInvalidRentalID = errors.New("invalid rental id")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidRentalPeriod is returned when the agreed return date is
	// before the rental date.
	ErrInvalidRentalPeriod = errors.New("invalid rental period")

	// ErrInvalidVehicleType is returned when the vehicle type is not one of
	// the known classifications.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrInvalidDailyFee is returned when the daily fee is not positive.
	ErrInvalidDailyFee = errors.New("invalid daily fee")

	// ErrInvalidInventory is returned when the initial unit count is negative.
	ErrInvalidInventory = errors.New("invalid inventory")

	// ErrVehicleUnavailable is returned when booking a vehicle with zero
	// available units.
	ErrVehicleUnavailable = errors.New("vehicle not available for rent")

	// ErrOpenRentalExists is returned when a customer with an open rental
	// tries to book another one.
	ErrOpenRentalExists = errors.New("customer already has an open rental")

	// ErrRentalAlreadyClosed is returned when closing a rental twice.
	ErrRentalAlreadyClosed = errors.New("rental already closed")

	// ErrRentalStillOpen is returned when paying for a rental that has not
	// been closed yet.
	ErrRentalStillOpen = errors.New("rental has not been closed")

	// ErrAlreadyPaid is returned when a rental already has a paid payment.
	ErrAlreadyPaid = errors.New("rental already paid")

	// ErrNotRentalOwner is returned when a principal tries to pay for another
	// customer's rental.
	ErrNotRentalOwner = errors.New("not the owner of this rental")

	// ErrAccessDenied is returned when a principal queries data it has no
	// privilege to see.
	ErrAccessDenied = errors.New("access denied")

	// ErrSessionCreationFailed is returned when the external payment provider
	// cannot create a checkout session.
	ErrSessionCreationFailed = errors.New("payment session creation failed")

	// ErrBookingInProgress is returned when another booking for the same
	// customer holds the booking lock.
	ErrBookingInProgress = errors.New("another booking for this customer is in progress")

	// ErrPaymentInProgress is returned when another payment for the same
	// rental holds the payment lock.
	ErrPaymentInProgress = errors.New("another payment for this rental is in progress")
)
