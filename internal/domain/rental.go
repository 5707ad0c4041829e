package domain

import "time"

// Rental represents a customer renting one unit of a vehicle.
// ActualReturnDate is the zero time while the rental is open; it is set
// exactly once when the vehicle is returned and never changes afterwards.
type Rental struct {
	ID               string
	CustomerID       string
	VehicleID        string
	RentalDate       time.Time
	ReturnDate       time.Time // agreed return date
	ActualReturnDate time.Time
}

// Open reports whether the vehicle has not been returned yet.
func (r *Rental) Open() bool {
	return r.ActualReturnDate.IsZero()
}

// Overdue reports whether the rental is open past its agreed return date.
func (r *Rental) Overdue(today time.Time) bool {
	return r.Open() && r.ReturnDate.Before(today)
}
