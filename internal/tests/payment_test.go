package tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"carshare/internal/domain"
	"carshare/internal/service"
)

// ──────────────────────────────────────────────
// 3. PAYMENTS
// ──────────────────────────────────────────────

type paymentFixture struct {
	vehicleRepo  *MockVehicleRepository
	rentalRepo   *MockRentalRepository
	paymentRepo  *MockPaymentRepository
	customerRepo *MockCustomerRepository
	sessions     *MockSessionProvider
	lockStore    *MockLockStore
	notifier     *RecordingNotifier
	service      *service.PaymentService
}

// newPaymentFixture seeds one closed rental: 100/day, booked Jan 1 for
// return Jan 6, actually returned Jan 5 — so the amount owed is 400.
func newPaymentFixture() *paymentFixture {
	vehicleRepo := NewMockVehicleRepository()
	rentalRepo := NewMockRentalRepository()
	paymentRepo := NewMockPaymentRepository()
	customerRepo := NewMockCustomerRepository()
	sessions := NewMockSessionProvider()
	lockStore := NewMockLockStore()
	notifier := NewRecordingNotifier()

	customerRepo.AddCustomer(&domain.Customer{
		ID:   "customer-1",
		Name: "Alice",
		Role: domain.RoleCustomer,
	})
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:        "vehicle-1",
		Type:      domain.VehicleTypeSedan,
		Inventory: 3,
		DailyFee:  100,
	})
	rentalRepo.AddRental(&domain.Rental{
		ID:               "rental-1",
		CustomerID:       "customer-1",
		VehicleID:        "vehicle-1",
		RentalDate:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		ReturnDate:       time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC),
		ActualReturnDate: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})

	tx := NewMockTxManager(vehicleRepo, rentalRepo, paymentRepo)
	notifications := service.NewNotificationService(notifier, 0)

	return &paymentFixture{
		vehicleRepo:  vehicleRepo,
		rentalRepo:   rentalRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		sessions:     sessions,
		lockStore:    lockStore,
		notifier:     notifier,
		service: service.NewPaymentService(
			tx, paymentRepo, rentalRepo, vehicleRepo, customerRepo,
			sessions, lockStore, notifications, "https://rentals.example.com",
		),
	}
}

func owner() domain.Principal {
	return domain.Principal{CustomerID: "customer-1", Role: domain.RoleCustomer}
}

func manager() domain.Principal {
	return domain.Principal{CustomerID: "manager-1", Role: domain.RoleManager}
}

func TestCreatePayment_Success(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	payment, err := f.service.CreatePayment(context.Background(), owner(), "rental-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.Amount != 400 {
		t.Errorf("expected amount 400, got %v", payment.Amount)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected PENDING, got %s", payment.Status)
	}
	if payment.Type != domain.PaymentTypePayment {
		t.Errorf("expected PAYMENT type, got %s", payment.Type)
	}
	if payment.SessionID == "" || payment.SessionURL == "" {
		t.Error("expected session handle on the payment")
	}

	// The callback URLs point at this payment.
	req := f.sessions.LastRequest
	if !strings.Contains(req.SuccessURL, payment.ID) || !strings.Contains(req.CancelURL, payment.ID) {
		t.Errorf("callback URLs do not reference the payment: %+v", req)
	}
	if !strings.HasPrefix(req.SuccessURL, "https://rentals.example.com/") {
		t.Errorf("success URL not rooted at the configured base: %s", req.SuccessURL)
	}
	if req.Currency != "usd" {
		t.Errorf("expected usd, got %s", req.Currency)
	}

	// The payment was persisted.
	if f.paymentRepo.GetPayment(payment.ID) == nil {
		t.Error("payment not persisted")
	}
}

func TestCreatePayment_NotOwner(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	stranger := domain.Principal{CustomerID: "customer-2", Role: domain.RoleCustomer}
	_, err := f.service.CreatePayment(context.Background(), stranger, "rental-1")
	if !errors.Is(err, service.ErrNotRentalOwner) {
		t.Fatalf("expected ErrNotRentalOwner, got %v", err)
	}
	if f.sessions.CreateCallCount != 0 {
		t.Error("no session should be created for a foreign rental")
	}
}

func TestCreatePayment_RentalStillOpen(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.rentalRepo.AddRental(&domain.Rental{
		ID:         "rental-open",
		CustomerID: "customer-1",
		VehicleID:  "vehicle-1",
		RentalDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC),
	})

	_, err := f.service.CreatePayment(context.Background(), owner(), "rental-open")
	if !errors.Is(err, service.ErrRentalStillOpen) {
		t.Fatalf("expected ErrRentalStillOpen, got %v", err)
	}
}

func TestCreatePayment_AlreadyPaid(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.paymentRepo.AddPayment(&domain.Payment{
		ID:       "payment-paid",
		RentalID: "rental-1",
		Status:   domain.PaymentStatusPaid,
		Type:     domain.PaymentTypePayment,
		Amount:   400,
	}, "customer-1")

	_, err := f.service.CreatePayment(context.Background(), owner(), "rental-1")
	if !errors.Is(err, service.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
	if f.sessions.CreateCallCount != 0 {
		t.Error("no session should be created for a settled rental")
	}
	if f.paymentRepo.CountPayments() != 1 {
		t.Errorf("expected 1 payment, got %d", f.paymentRepo.CountPayments())
	}
}

func TestCreatePayment_SessionFailureLeavesNothingBehind(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.sessions.CreateError = errors.New("provider down")

	_, err := f.service.CreatePayment(context.Background(), owner(), "rental-1")
	if !errors.Is(err, service.ErrSessionCreationFailed) {
		t.Fatalf("expected ErrSessionCreationFailed, got %v", err)
	}

	// No half-created payment may survive a provider failure.
	if f.paymentRepo.CountPayments() != 0 {
		t.Errorf("expected no payments, got %d", f.paymentRepo.CountPayments())
	}
}

func TestCreatePayment_LockAlreadyHeld(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.lockStore.AlwaysHeld = true

	_, err := f.service.CreatePayment(context.Background(), owner(), "rental-1")
	if !errors.Is(err, service.ErrPaymentInProgress) {
		t.Fatalf("expected ErrPaymentInProgress, got %v", err)
	}
}

func TestCreatePayment_FineForLateReturn(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.rentalRepo.AddRental(&domain.Rental{
		ID:               "rental-late",
		CustomerID:       "customer-1",
		VehicleID:        "vehicle-1",
		RentalDate:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		ReturnDate:       time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC),
		ActualReturnDate: time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC),
	})

	payment, err := f.service.CreatePayment(context.Background(), owner(), "rental-late")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 8 days at 100 plus 3 overdue days at 150.
	if payment.Amount != 1250 {
		t.Errorf("expected amount 1250, got %v", payment.Amount)
	}
	if payment.Type != domain.PaymentTypeFine {
		t.Errorf("expected FINE type for a late return, got %s", payment.Type)
	}
}

func TestMarkPaid_TransitionAndReplay(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	payment, err := f.service.CreatePayment(context.Background(), owner(), "rental-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.service.MarkPaid(context.Background(), owner(), payment.ID); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	stored := f.paymentRepo.GetPayment(payment.ID)
	if stored.Status != domain.PaymentStatusPaid {
		t.Errorf("expected PAID, got %s", stored.Status)
	}

	// The provider may replay the success redirect.
	if err := f.service.MarkPaid(context.Background(), owner(), payment.ID); err != nil {
		t.Fatalf("replayed mark paid must be a no-op, got %v", err)
	}
	if got := f.paymentRepo.GetPayment(payment.ID).Status; got != domain.PaymentStatusPaid {
		t.Errorf("replay changed the status to %s", got)
	}
}

func TestMarkPaid_OnlyFirstConfirmationWins(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	// Sessions expire, so a second pending payment for the same unsettled
	// rental is a legitimate state.
	first, err := f.service.CreatePayment(context.Background(), owner(), "rental-1")
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	second, err := f.service.CreatePayment(context.Background(), owner(), "rental-1")
	if err != nil {
		t.Fatalf("second pending payment failed: %v", err)
	}

	if err := f.service.MarkPaid(context.Background(), owner(), first.ID); err != nil {
		t.Fatalf("first confirmation failed: %v", err)
	}

	// The provider redirect for the other session must not settle the
	// rental a second time.
	if err := f.service.MarkPaid(context.Background(), owner(), second.ID); !errors.Is(err, service.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid for the second confirmation, got %v", err)
	}

	if got := f.paymentRepo.CountPaidForRental("rental-1"); got != 1 {
		t.Errorf("expected exactly 1 paid payment for the rental, got %d", got)
	}
	if got := f.paymentRepo.GetPayment(second.ID).Status; got != domain.PaymentStatusPending {
		t.Errorf("losing payment changed status to %s", got)
	}
}

func TestMarkPaid_AccessControl(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	payment, err := f.service.CreatePayment(context.Background(), owner(), "rental-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stranger := domain.Principal{CustomerID: "customer-2", Role: domain.RoleCustomer}
	if err := f.service.MarkPaid(context.Background(), stranger, payment.ID); !errors.Is(err, service.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for a stranger, got %v", err)
	}

	// Managers can settle any payment.
	if err := f.service.MarkPaid(context.Background(), manager(), payment.ID); err != nil {
		t.Fatalf("manager mark paid failed: %v", err)
	}
}

func TestListPayments_AccessControl(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.paymentRepo.AddPayment(&domain.Payment{
		ID:       "payment-1",
		RentalID: "rental-1",
		Status:   domain.PaymentStatusPending,
		Type:     domain.PaymentTypePayment,
		Amount:   400,
	}, "customer-1")

	// A customer sees their own payments.
	payments, err := f.service.ListPaymentsForCustomer(context.Background(), owner(), "customer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("expected 1 payment, got %d", len(payments))
	}

	// A customer cannot see someone else's.
	stranger := domain.Principal{CustomerID: "customer-2", Role: domain.RoleCustomer}
	if _, err := f.service.ListPaymentsForCustomer(context.Background(), stranger, "customer-1"); !errors.Is(err, service.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	// A manager can see anyone's.
	payments, err = f.service.ListPaymentsForCustomer(context.Background(), manager(), "customer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("expected 1 payment for manager query, got %d", len(payments))
	}
}
