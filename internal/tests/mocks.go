package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"carshare/internal/domain"
	"carshare/internal/redis"
	"carshare/internal/repository"
	"carshare/internal/service"
)

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
// ReserveUnit and ReleaseUnit are conditional under the lock, mirroring
// the single-statement semantics of the real store.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	// Counters for verification
	ReserveCallCount int32
	ReleaseCallCount int32

	// Error injection
	ReserveError error
	ReleaseError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok || vehicle.Deleted {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		if v.Deleted {
			continue
		}
		copy := *v
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockVehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.vehicles[vehicle.ID]
	if !ok || existing.Deleted {
		return repository.ErrNotFound
	}
	existing.Brand = vehicle.Brand
	existing.Model = vehicle.Model
	existing.Type = vehicle.Type
	existing.DailyFee = vehicle.DailyFee
	return nil
}

func (m *MockVehicleRepository) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok || vehicle.Deleted {
		return repository.ErrNotFound
	}
	vehicle.Deleted = true
	return nil
}

func (m *MockVehicleRepository) ReserveUnit(ctx context.Context, id string) error {
	atomic.AddInt32(&m.ReserveCallCount, 1)
	if m.ReserveError != nil {
		return m.ReserveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok || vehicle.Deleted {
		return repository.ErrNotFound
	}
	if vehicle.Inventory <= 0 {
		return repository.ErrNoInventory
	}
	vehicle.Inventory--
	return nil
}

func (m *MockVehicleRepository) ReleaseUnit(ctx context.Context, id string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	if m.ReleaseError != nil {
		return m.ReleaseError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	vehicle.Inventory++
	return nil
}

// Inventory returns the current unit count for test assertions.
func (m *MockVehicleRepository) Inventory(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return -1
	}
	return vehicle.Inventory
}

// ──────────────────────────────────────────────
// MOCK RENTAL REPOSITORY
// ──────────────────────────────────────────────

// MockRentalRepository is a mock implementation of RentalRepository.
// Create enforces one open rental per customer under the lock, the same
// guarantee the real store gets from its partial unique index.
type MockRentalRepository struct {
	mu      sync.RWMutex
	rentals map[string]*domain.Rental

	// Counters for verification
	CreateCallCount int32
	CloseCallCount  int32

	// Error injection
	CreateError error
	CloseError  error
}

// NewMockRentalRepository creates a new mock rental repository.
func NewMockRentalRepository() *MockRentalRepository {
	return &MockRentalRepository{
		rentals: make(map[string]*domain.Rental),
	}
}

// AddRental adds a rental to the mock repository.
func (m *MockRentalRepository) AddRental(rental *domain.Rental) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rentals[rental.ID] = rental
}

func (m *MockRentalRepository) Create(ctx context.Context, rental *domain.Rental) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rentals {
		if r.CustomerID == rental.CustomerID && r.Open() {
			return repository.ErrOpenRentalConflict
		}
	}
	m.rentals[rental.ID] = rental
	return nil
}

func (m *MockRentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rental, ok := m.rentals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *rental
	return &copy, nil
}

func (m *MockRentalRepository) List(ctx context.Context, filter repository.RentalFilter) ([]*domain.Rental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Rental, 0, len(m.rentals))
	for _, r := range m.rentals {
		if filter.CustomerID != "" && r.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Active != nil && r.Open() != *filter.Active {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRentalRepository) GetOpenByCustomerID(ctx context.Context, customerID string) (*domain.Rental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rentals {
		if r.CustomerID == customerID && r.Open() {
			copy := *r
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockRentalRepository) Close(ctx context.Context, id string, returnedAt time.Time) error {
	atomic.AddInt32(&m.CloseCallCount, 1)
	if m.CloseError != nil {
		return m.CloseError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rental, ok := m.rentals[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !rental.Open() {
		return repository.ErrAlreadyClosed
	}
	rental.ActualReturnDate = returnedAt
	return nil
}

// GetRental returns the stored rental for test assertions.
func (m *MockRentalRepository) GetRental(id string) *domain.Rental {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rentals[id]
}

// CountRentals returns the number of stored rentals.
func (m *MockRentalRepository) CountRentals() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rentals)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
	rentals  map[string]string // payment ID -> customer ID, for ListByCustomerID

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
		rentals:  make(map[string]string),
	}
}

// AddPayment adds a payment owned by the given customer.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment, customerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	m.rentals[payment.ID] = customerID
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetPaidByRentalID(ctx context.Context, rentalID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.RentalID == rentalID && p.Status == domain.PaymentStatusPaid {
			copy := *p
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) ListByCustomerID(ctx context.Context, customerID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Payment, 0)
	for id, p := range m.payments {
		if m.rentals[id] != customerID {
			continue
		}
		copy := *p
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	// Mirror the partial unique index on paid payments.
	if status == domain.PaymentStatusPaid {
		for _, p := range m.payments {
			if p.ID != id && p.RentalID == payment.RentalID && p.Status == domain.PaymentStatusPaid {
				return repository.ErrPaidConflict
			}
		}
	}
	payment.Status = status
	return nil
}

// GetPayment returns the stored payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

// CountPayments returns the number of stored payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// CountPaidForRental returns the number of PAID payments for a rental.
func (m *MockPaymentRepository) CountPaidForRental(rentalID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.payments {
		if p.RentalID == rentalID && p.Status == domain.PaymentStatusPaid {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────
// MOCK CUSTOMER REPOSITORY
// ──────────────────────────────────────────────

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
}

// NewMockCustomerRepository creates a new mock customer repository.
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]*domain.Customer),
	}
}

// AddCustomer adds a customer to the mock repository.
func (m *MockCustomerRepository) AddCustomer(customer *domain.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customer.ID] = customer
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	customer, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *customer
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK TX MANAGER
// ──────────────────────────────────────────────

// MockTxManager runs the callback against the shared mocks. There is no
// rollback; tests that need failure isolation inject errors before the
// first write instead.
type MockTxManager struct {
	Repos repository.Repositories

	// Error injection: returned before fn runs.
	BeginError error
}

// NewMockTxManager creates a TxManager over the given mocks.
func NewMockTxManager(vehicles repository.VehicleRepository, rentals repository.RentalRepository, payments repository.PaymentRepository) *MockTxManager {
	return &MockTxManager{
		Repos: repository.Repositories{
			Vehicles: vehicles,
			Rentals:  rentals,
			Payments: payments,
		},
	}
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(m.Repos)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Error injection
	AcquireError error

	// When true, every acquire reports the lock as already held.
	AlwaysHeld bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]bool),
	}
}

func (m *MockLockStore) acquire(key string) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.AlwaysHeld {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *MockLockStore) release(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

func (m *MockLockStore) AcquireCustomerLock(ctx context.Context, customerID string, ttl time.Duration) (bool, error) {
	return m.acquire("customer:" + customerID)
}

func (m *MockLockStore) ReleaseCustomerLock(ctx context.Context, customerID string) error {
	return m.release("customer:" + customerID)
}

func (m *MockLockStore) AcquireRentalLock(ctx context.Context, rentalID string, ttl time.Duration) (bool, error) {
	return m.acquire("rental:" + rentalID)
}

func (m *MockLockStore) ReleaseRentalLock(ctx context.Context, rentalID string) error {
	return m.release("rental:" + rentalID)
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu       sync.RWMutex
	vehicles map[string]*redis.CachedVehicle

	// Counters for verification
	GetCallCount int32
	SetCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		vehicles: make(map[string]*redis.CachedVehicle),
	}
}

func (m *MockCacheStore) GetVehicle(ctx context.Context, vehicleID string) (*redis.CachedVehicle, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	cached, ok := m.vehicles[vehicleID]
	if !ok {
		return nil, nil
	}
	copy := *cached
	return &copy, nil
}

func (m *MockCacheStore) SetVehicle(ctx context.Context, vehicle *redis.CachedVehicle) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockCacheStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vehicles, vehicleID)
	return nil
}

// Cached reports whether a vehicle is currently cached.
func (m *MockCacheStore) Cached(vehicleID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vehicles[vehicleID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK SESSION PROVIDER
// ──────────────────────────────────────────────

// MockSessionProvider is a mock implementation of SessionProvider.
type MockSessionProvider struct {
	mu sync.Mutex

	// Counters for verification
	CreateCallCount int32

	// LastRequest holds the most recent session request.
	LastRequest service.SessionRequest

	// Error injection
	CreateError error
}

// NewMockSessionProvider creates a new mock session provider.
func NewMockSessionProvider() *MockSessionProvider {
	return &MockSessionProvider{}
}

func (m *MockSessionProvider) CreateSession(ctx context.Context, req service.SessionRequest) (*service.Session, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	m.LastRequest = req
	m.mu.Unlock()
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	return &service.Session{
		ID:  "sess_mock",
		URL: "https://checkout.example.com/sess_mock",
	}, nil
}

// ──────────────────────────────────────────────
// RECORDING NOTIFIER
// ──────────────────────────────────────────────

// RecordingNotifier captures every delivered message for assertions.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

// NewRecordingNotifier creates a new RecordingNotifier.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(ctx context.Context, chatID int64, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

// Messages returns a copy of everything delivered so far.
func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.messages))
	copy(out, n.messages)
	return out
}
