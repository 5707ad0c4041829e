package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carshare/internal/domain"
	"carshare/internal/redis"
	"carshare/internal/repository"
)

const (
	// paymentCurrency is fixed; multi-currency pricing is not supported.
	paymentCurrency = "usd"

	paymentLockTTL = 30 * time.Second
)

// SessionRequest contains the parameters for an external checkout session.
type SessionRequest struct {
	Amount      float64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
}

// Session is the external provider's handle for a pending checkout.
type Session struct {
	ID  string
	URL string
}

// SessionProvider creates checkout sessions with an external payment
// provider. A single bounded synchronous call; failures are not retried.
type SessionProvider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// PaymentService orchestrates payments for closed rentals.
type PaymentService struct {
	tx            repository.TxManager
	paymentRepo   repository.PaymentRepository
	rentalRepo    repository.RentalRepository
	vehicleRepo   repository.VehicleRepository
	customerRepo  repository.CustomerRepository
	sessions      SessionProvider
	lockStore     redis.LockStoreInterface
	notifications *NotificationService
	baseURL       string
}

// NewPaymentService creates a new PaymentService. baseURL is the externally
// reachable root the provider redirects back to after checkout.
func NewPaymentService(
	tx repository.TxManager,
	paymentRepo repository.PaymentRepository,
	rentalRepo repository.RentalRepository,
	vehicleRepo repository.VehicleRepository,
	customerRepo repository.CustomerRepository,
	sessions SessionProvider,
	lockStore redis.LockStoreInterface,
	notifications *NotificationService,
	baseURL string,
) *PaymentService {
	return &PaymentService{
		tx:            tx,
		paymentRepo:   paymentRepo,
		rentalRepo:    rentalRepo,
		vehicleRepo:   vehicleRepo,
		customerRepo:  customerRepo,
		sessions:      sessions,
		lockStore:     lockStore,
		notifications: notifications,
		baseURL:       baseURL,
	}
}

// CreatePayment creates a PENDING payment with an external checkout session
// for a closed rental owned by the principal.
//
// Nothing is persisted until the external session exists: a provider failure
// aborts the whole operation. The already-paid check is re-run inside the
// insert transaction, and a per-rental lock serializes concurrent attempts,
// so at most one payment per rental can ever reach PAID status.
func (s *PaymentService) CreatePayment(ctx context.Context, principal domain.Principal, rentalID string) (*domain.Payment, error) {
	if rentalID == "" {
		return nil, ErrInvalidRentalID
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if rental.CustomerID != principal.CustomerID {
		return nil, ErrNotRentalOwner
	}

	if rental.Open() {
		return nil, ErrRentalStillOpen
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireRentalLock(ctx, rentalID, paymentLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrPaymentInProgress
		}
		defer s.lockStore.ReleaseRentalLock(ctx, rentalID)
	}

	paid, err := s.paymentRepo.GetPaidByRentalID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if paid != nil {
		return nil, ErrAlreadyPaid
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, rental.VehicleID)
	if err != nil {
		return nil, err
	}

	amount := ComputeAmount(vehicle.DailyFee, rental.RentalDate, rental.ReturnDate, rental.ActualReturnDate)

	// A late return is charged as a fine; the amount still covers the
	// regular duration plus the overdue surcharge.
	paymentType := domain.PaymentTypePayment
	productName := "Rental Payment"
	if rental.ActualReturnDate.After(rental.ReturnDate) {
		paymentType = domain.PaymentTypeFine
		productName = "Rental Fine Payment"
	}

	// The payment's identity is fixed before the session exists so the
	// provider's callback URLs can point at it.
	paymentID := uuid.New().String()

	session, err := s.sessions.CreateSession(ctx, SessionRequest{
		Amount:      amount,
		Currency:    paymentCurrency,
		ProductName: productName,
		SuccessURL:  fmt.Sprintf("%s/v1/payments/success/%s", s.baseURL, paymentID),
		CancelURL:   fmt.Sprintf("%s/v1/payments/cancel/%s", s.baseURL, paymentID),
	})
	if err != nil {
		return nil, ErrSessionCreationFailed
	}

	payment := &domain.Payment{
		ID:         paymentID,
		RentalID:   rentalID,
		Status:     domain.PaymentStatusPending,
		Type:       paymentType,
		Amount:     amount,
		SessionID:  session.ID,
		SessionURL: session.URL,
	}

	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		paid, err := r.Payments.GetPaidByRentalID(ctx, rentalID)
		if err != nil {
			return err
		}
		if paid != nil {
			return ErrAlreadyPaid
		}
		return r.Payments.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	if customer, err := s.customerRepo.GetByID(ctx, rental.CustomerID); err == nil {
		s.notifications.NotifyPaymentCreated(payment, customer)
	} else {
		zap.S().Errorw("skipping payment notification, customer lookup failed",
			"payment_id", payment.ID,
			"customer_id", rental.CustomerID,
			"error", err,
		)
	}

	return payment, nil
}

// ListPaymentsForCustomer retrieves all payments for the customer's rentals.
// Managers may query any customer; customers may only query themselves.
func (s *PaymentService) ListPaymentsForCustomer(ctx context.Context, principal domain.Principal, customerID string) ([]*domain.Payment, error) {
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}

	if !principal.IsManager() && principal.CustomerID != customerID {
		return nil, ErrAccessDenied
	}

	return s.paymentRepo.ListByCustomerID(ctx, customerID)
}

// MarkPaid transitions a payment from PENDING to PAID after the provider
// confirms checkout. Marking an already-paid payment is a no-op, so the
// provider's success redirect can be replayed safely.
//
// A rental can accumulate several PENDING payments (each checkout session
// expires after 24 hours, so a fresh session for an unsettled rental is
// legitimate), but only the first confirmation wins: once any payment for
// the rental is PAID, confirming a different one fails with ErrAlreadyPaid.
// The partial unique index on paid payments backs the check should two
// confirmations race.
func (s *PaymentService) MarkPaid(ctx context.Context, principal domain.Principal, paymentID string) error {
	if paymentID == "" {
		return ErrInvalidPaymentID
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	rental, err := s.rentalRepo.GetByID(ctx, payment.RentalID)
	if err != nil {
		return err
	}

	if !principal.IsManager() && rental.CustomerID != principal.CustomerID {
		return ErrAccessDenied
	}

	if payment.Status == domain.PaymentStatusPaid {
		return nil
	}

	paid, err := s.paymentRepo.GetPaidByRentalID(ctx, payment.RentalID)
	if err != nil {
		return err
	}
	if paid != nil {
		if paid.ID == paymentID {
			return nil
		}
		return ErrAlreadyPaid
	}

	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, domain.PaymentStatusPaid); err != nil {
		if err == repository.ErrPaidConflict {
			return ErrAlreadyPaid
		}
		return err
	}
	return nil
}
