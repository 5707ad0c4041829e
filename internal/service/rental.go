package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carshare/internal/domain"
	"carshare/internal/redis"
	"carshare/internal/repository"
)

// bookingLockTTL bounds how long a crashed booking can hold a customer's
// lock before it expires on its own.
const bookingLockTTL = 10 * time.Second

// RentalService handles the rental lifecycle: booking, returning, listing.
type RentalService struct {
	tx            repository.TxManager
	rentalRepo    repository.RentalRepository
	customerRepo  repository.CustomerRepository
	lockStore     redis.LockStoreInterface
	notifications *NotificationService
	now           func() time.Time
}

// NewRentalService creates a new RentalService.
func NewRentalService(
	tx repository.TxManager,
	rentalRepo repository.RentalRepository,
	customerRepo repository.CustomerRepository,
	lockStore redis.LockStoreInterface,
	notifications *NotificationService,
) *RentalService {
	return &RentalService{
		tx:            tx,
		rentalRepo:    rentalRepo,
		customerRepo:  customerRepo,
		lockStore:     lockStore,
		notifications: notifications,
		now:           time.Now,
	}
}

// BookRentalRequest contains the parameters for booking a rental.
type BookRentalRequest struct {
	CustomerID string
	VehicleID  string
	RentalDate time.Time
	ReturnDate time.Time
}

// BookRental reserves one unit of the vehicle and creates an open rental.
//
// The one-open-rental check and the rental insert run inside one database
// transaction, serialized per customer by a distributed lock; the partial
// unique index on open rentals backs the check should the lock ever be
// bypassed. The unit reservation is a conditional decrement in the same
// transaction, so a failed insert never leaks a reserved unit.
func (s *RentalService) BookRental(ctx context.Context, req BookRentalRequest) (*domain.Rental, error) {
	if err := s.validateBookRequest(req); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireCustomerLock(ctx, req.CustomerID, bookingLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrBookingInProgress
		}
		defer s.lockStore.ReleaseCustomerLock(ctx, req.CustomerID)
	}

	rental := &domain.Rental{
		ID:         uuid.New().String(),
		CustomerID: req.CustomerID,
		VehicleID:  req.VehicleID,
		RentalDate: dateOnly(req.RentalDate),
		ReturnDate: dateOnly(req.ReturnDate),
	}

	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		open, err := r.Rentals.GetOpenByCustomerID(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if open != nil {
			return ErrOpenRentalExists
		}

		if err := r.Vehicles.ReserveUnit(ctx, req.VehicleID); err != nil {
			if err == repository.ErrNoInventory {
				return ErrVehicleUnavailable
			}
			return err
		}

		if err := r.Rentals.Create(ctx, rental); err != nil {
			if err == repository.ErrOpenRentalConflict {
				return ErrOpenRentalExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyRentalCreated(rental, customer)

	return rental, nil
}

// CloseRental sets the actual return date and releases the vehicle unit.
// Closing is conditional on the rental still being open; a second close
// returns ErrRentalAlreadyClosed and changes nothing.
func (s *RentalService) CloseRental(ctx context.Context, rentalID string) (*domain.Rental, error) {
	if rentalID == "" {
		return nil, ErrInvalidRentalID
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if !rental.Open() {
		return nil, ErrRentalAlreadyClosed
	}

	returnedAt := dateOnly(s.now())

	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		if err := r.Rentals.Close(ctx, rentalID, returnedAt); err != nil {
			if err == repository.ErrAlreadyClosed {
				return ErrRentalAlreadyClosed
			}
			return err
		}
		return r.Vehicles.ReleaseUnit(ctx, rental.VehicleID)
	})
	if err != nil {
		return nil, err
	}

	rental.ActualReturnDate = returnedAt

	if customer, err := s.customerRepo.GetByID(ctx, rental.CustomerID); err == nil {
		s.notifications.NotifyRentalReturned(rental, customer)
	} else {
		zap.S().Errorw("skipping return notification, customer lookup failed",
			"rental_id", rental.ID,
			"customer_id", rental.CustomerID,
			"error", err,
		)
	}

	return rental, nil
}

// GetRental retrieves a rental by ID.
func (s *RentalService) GetRental(ctx context.Context, rentalID string) (*domain.Rental, error) {
	if rentalID == "" {
		return nil, ErrInvalidRentalID
	}

	return s.rentalRepo.GetByID(ctx, rentalID)
}

// ListRentals retrieves rentals, optionally narrowed by customer and by
// open/closed state. Both filters compose with AND semantics.
func (s *RentalService) ListRentals(ctx context.Context, filter repository.RentalFilter) ([]*domain.Rental, error) {
	return s.rentalRepo.List(ctx, filter)
}

// HasOpenRental reports whether the customer currently has an open rental.
func (s *RentalService) HasOpenRental(ctx context.Context, customerID string) (bool, error) {
	if customerID == "" {
		return false, ErrInvalidCustomerID
	}

	open, err := s.rentalRepo.GetOpenByCustomerID(ctx, customerID)
	if err != nil {
		return false, err
	}
	return open != nil, nil
}

func (s *RentalService) validateBookRequest(req BookRentalRequest) error {
	if req.CustomerID == "" {
		return ErrInvalidCustomerID
	}
	if req.VehicleID == "" {
		return ErrInvalidVehicleID
	}
	if req.RentalDate.IsZero() || req.ReturnDate.IsZero() {
		return ErrInvalidRentalPeriod
	}
	if dateOnly(req.ReturnDate).Before(dateOnly(req.RentalDate)) {
		return ErrInvalidRentalPeriod
	}
	return nil
}
