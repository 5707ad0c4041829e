package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"carshare/internal/domain"
	"carshare/internal/repository"
	"carshare/internal/service"
)

// ──────────────────────────────────────────────
// 2. RENTAL LIFECYCLE
// ──────────────────────────────────────────────

func TestCloseRental_ReleasesUnit(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	rental, err := f.service.BookRental(context.Background(), bookReq())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if got := f.vehicleRepo.Inventory("vehicle-1"); got != 2 {
		t.Fatalf("expected inventory 2 after booking, got %d", got)
	}

	closed, err := f.service.CloseRental(context.Background(), rental.ID)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if closed.Open() {
		t.Error("expected rental to be closed")
	}
	if closed.ActualReturnDate.IsZero() {
		t.Error("expected actual return date to be set")
	}

	// The unit went back on the shelf.
	if got := f.vehicleRepo.Inventory("vehicle-1"); got != 3 {
		t.Errorf("expected inventory 3 after return, got %d", got)
	}
}

func TestCloseRental_DoubleCloseRejected(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	rental, err := f.service.BookRental(context.Background(), bookReq())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if _, err := f.service.CloseRental(context.Background(), rental.ID); err != nil {
		t.Fatalf("first close failed: %v", err)
	}

	_, err = f.service.CloseRental(context.Background(), rental.ID)
	if !errors.Is(err, service.ErrRentalAlreadyClosed) {
		t.Fatalf("expected ErrRentalAlreadyClosed, got %v", err)
	}

	// The second close must not release another unit.
	if got := f.vehicleRepo.Inventory("vehicle-1"); got != 3 {
		t.Errorf("expected inventory 3 after double close, got %d", got)
	}
	if f.vehicleRepo.ReleaseCallCount != 1 {
		t.Errorf("expected 1 release, got %d", f.vehicleRepo.ReleaseCallCount)
	}

	// The recorded return date is untouched.
	stored := f.rentalRepo.GetRental(rental.ID)
	if stored == nil || stored.Open() {
		t.Error("expected rental to remain closed")
	}
}

func TestCloseRental_SucceedsWhenCustomerLookupFails(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	// Seed an open rental for a customer the identity store no longer knows.
	f.rentalRepo.AddRental(&domain.Rental{
		ID:         "rental-orphan",
		CustomerID: "customer-gone",
		VehicleID:  "vehicle-1",
		RentalDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC),
	})

	closed, err := f.service.CloseRental(context.Background(), "rental-orphan")
	if err != nil {
		t.Fatalf("close must not fail on a notification lookup problem: %v", err)
	}
	if closed.Open() {
		t.Error("expected rental to be closed")
	}
	if got := f.vehicleRepo.Inventory("vehicle-1"); got != 4 {
		t.Errorf("expected inventory 4 after release, got %d", got)
	}

	// No destination to deliver to, so nothing was sent.
	if messages := f.notifier.Messages(); len(messages) != 0 {
		t.Errorf("expected no notifications, got %v", messages)
	}
}

func TestCloseRental_UnknownRental(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	_, err := f.service.CloseRental(context.Background(), "no-such-rental")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCloseRental_AllowsRebooking(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	rental, err := f.service.BookRental(context.Background(), bookReq())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := f.service.CloseRental(context.Background(), rental.ID); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// With the first rental closed, the same customer can book again.
	if _, err := f.service.BookRental(context.Background(), bookReq()); err != nil {
		t.Fatalf("rebooking after return failed: %v", err)
	}
}

func TestListRentals_FiltersCompose(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	jan1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	jan5 := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

	f.rentalRepo.AddRental(&domain.Rental{
		ID: "r-open-a", CustomerID: "a", VehicleID: "vehicle-1",
		RentalDate: jan1, ReturnDate: jan5,
	})
	f.rentalRepo.AddRental(&domain.Rental{
		ID: "r-closed-a", CustomerID: "a", VehicleID: "vehicle-1",
		RentalDate: jan1, ReturnDate: jan5, ActualReturnDate: jan5,
	})
	f.rentalRepo.AddRental(&domain.Rental{
		ID: "r-open-b", CustomerID: "b", VehicleID: "vehicle-1",
		RentalDate: jan1, ReturnDate: jan5,
	})

	active := true
	inactive := false

	tests := []struct {
		name   string
		filter repository.RentalFilter
		want   int
	}{
		{"no filter", repository.RentalFilter{}, 3},
		{"by customer", repository.RentalFilter{CustomerID: "a"}, 2},
		{"active only", repository.RentalFilter{Active: &active}, 2},
		{"inactive only", repository.RentalFilter{Active: &inactive}, 1},
		{"customer and active", repository.RentalFilter{CustomerID: "a", Active: &active}, 1},
		{"customer without rentals", repository.RentalFilter{CustomerID: "c"}, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rentals, err := f.service.ListRentals(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rentals) != tt.want {
				t.Errorf("expected %d rentals, got %d", tt.want, len(rentals))
			}
		})
	}
}

func TestHasOpenRental(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	has, err := f.service.HasOpenRental(context.Background(), "customer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Error("expected no open rental before booking")
	}

	rental, err := f.service.BookRental(context.Background(), bookReq())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	has, err = f.service.HasOpenRental(context.Background(), "customer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Error("expected an open rental after booking")
	}

	if _, err := f.service.CloseRental(context.Background(), rental.ID); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	has, err = f.service.HasOpenRental(context.Background(), "customer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Error("expected no open rental after return")
	}
}
