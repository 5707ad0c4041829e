package tests

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"carshare/internal/domain"
	"carshare/internal/repository"
	"carshare/internal/service"
)

// ──────────────────────────────────────────────
// 1. BOOKING
// ──────────────────────────────────────────────

type bookingFixture struct {
	vehicleRepo  *MockVehicleRepository
	rentalRepo   *MockRentalRepository
	customerRepo *MockCustomerRepository
	lockStore    *MockLockStore
	notifier     *RecordingNotifier
	service      *service.RentalService
}

func newBookingFixture() *bookingFixture {
	vehicleRepo := NewMockVehicleRepository()
	rentalRepo := NewMockRentalRepository()
	paymentRepo := NewMockPaymentRepository()
	customerRepo := NewMockCustomerRepository()
	lockStore := NewMockLockStore()
	notifier := NewRecordingNotifier()

	customerRepo.AddCustomer(&domain.Customer{
		ID:   "customer-1",
		Name: "Alice",
		Role: domain.RoleCustomer,
	})
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:        "vehicle-1",
		Brand:     "Toyota",
		Model:     "Corolla",
		Type:      domain.VehicleTypeSedan,
		Inventory: 3,
		DailyFee:  100,
	})

	tx := NewMockTxManager(vehicleRepo, rentalRepo, paymentRepo)
	notifications := service.NewNotificationService(notifier, 0)

	return &bookingFixture{
		vehicleRepo:  vehicleRepo,
		rentalRepo:   rentalRepo,
		customerRepo: customerRepo,
		lockStore:    lockStore,
		notifier:     notifier,
		service:      service.NewRentalService(tx, rentalRepo, customerRepo, lockStore, notifications),
	}
}

func bookReq() service.BookRentalRequest {
	return service.BookRentalRequest{
		CustomerID: "customer-1",
		VehicleID:  "vehicle-1",
		RentalDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestBookRental_Success(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	rental, err := f.service.BookRental(context.Background(), bookReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rental.Open() {
		t.Error("expected a freshly booked rental to be open")
	}
	if rental.CustomerID != "customer-1" || rental.VehicleID != "vehicle-1" {
		t.Errorf("unexpected rental: %+v", rental)
	}

	// One unit was reserved.
	if got := f.vehicleRepo.Inventory("vehicle-1"); got != 2 {
		t.Errorf("expected inventory 2, got %d", got)
	}

	// The customer was told.
	messages := f.notifier.Messages()
	if len(messages) != 1 || !strings.Contains(messages[0], "Alice") {
		t.Errorf("expected one booking notification mentioning the customer, got %v", messages)
	}
}

func TestBookRental_SecondOpenRentalRejected(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	if _, err := f.service.BookRental(context.Background(), bookReq()); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := f.service.BookRental(context.Background(), bookReq())
	if !errors.Is(err, service.ErrOpenRentalExists) {
		t.Fatalf("expected ErrOpenRentalExists, got %v", err)
	}

	// The rejected attempt must not consume a unit.
	if got := f.vehicleRepo.Inventory("vehicle-1"); got != 2 {
		t.Errorf("expected inventory 2 after rejected booking, got %d", got)
	}
	if f.rentalRepo.CountRentals() != 1 {
		t.Errorf("expected 1 rental, got %d", f.rentalRepo.CountRentals())
	}
}

func TestBookRental_NoInventory(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	f.vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:        "vehicle-empty",
		Type:      domain.VehicleTypeSUV,
		Inventory: 0,
		DailyFee:  150,
	})

	req := bookReq()
	req.VehicleID = "vehicle-empty"

	_, err := f.service.BookRental(context.Background(), req)
	if !errors.Is(err, service.ErrVehicleUnavailable) {
		t.Fatalf("expected ErrVehicleUnavailable, got %v", err)
	}

	// Nothing was persisted.
	if f.rentalRepo.CountRentals() != 0 {
		t.Errorf("expected no rentals, got %d", f.rentalRepo.CountRentals())
	}
	if got := f.vehicleRepo.Inventory("vehicle-empty"); got != 0 {
		t.Errorf("inventory changed on failed booking: %d", got)
	}
}

func TestBookRental_UnknownVehicle(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	req := bookReq()
	req.VehicleID = "no-such-vehicle"

	_, err := f.service.BookRental(context.Background(), req)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookRental_InvalidPeriod(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	req := bookReq()
	req.ReturnDate = req.RentalDate.AddDate(0, 0, -1)

	_, err := f.service.BookRental(context.Background(), req)
	if !errors.Is(err, service.ErrInvalidRentalPeriod) {
		t.Fatalf("expected ErrInvalidRentalPeriod, got %v", err)
	}
}

func TestBookRental_LockAlreadyHeld(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	f.lockStore.AlwaysHeld = true

	_, err := f.service.BookRental(context.Background(), bookReq())
	if !errors.Is(err, service.ErrBookingInProgress) {
		t.Fatalf("expected ErrBookingInProgress, got %v", err)
	}
}

func TestBookRental_ConcurrentLastUnit(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	f.vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:        "vehicle-last",
		Type:      domain.VehicleTypeHatchback,
		Inventory: 1,
		DailyFee:  80,
	})

	const attempts = 10
	for i := 0; i < attempts; i++ {
		f.customerRepo.AddCustomer(&domain.Customer{
			ID:   customerID(i),
			Name: "Customer",
			Role: domain.RoleCustomer,
		})
	}

	var wg sync.WaitGroup
	var succeeded int32
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := bookReq()
			req.CustomerID = customerID(i)
			req.VehicleID = "vehicle-last"
			if _, err := f.service.BookRental(context.Background(), req); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful booking of the last unit, got %d", succeeded)
	}
	if got := f.vehicleRepo.Inventory("vehicle-last"); got != 0 {
		t.Errorf("expected inventory 0, got %d (must never go negative)", got)
	}
}

func customerID(i int) string {
	return "customer-" + string(rune('a'+i))
}
