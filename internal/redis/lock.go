package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis. Locks serialize the
// check-and-create windows that span more than one statement: the
// one-open-rental check before booking and the already-paid check before
// payment creation.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireCustomerLock attempts to acquire the booking lock for a customer.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireCustomerLock(ctx context.Context, customerID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:customer:%s", customerID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseCustomerLock releases the booking lock for a customer.
func (s *LockStore) ReleaseCustomerLock(ctx context.Context, customerID string) error {
	key := fmt.Sprintf("lock:customer:%s", customerID)

	return s.client.Del(ctx, key).Err()
}

// AcquireRentalLock attempts to acquire the payment lock for a rental.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireRentalLock(ctx context.Context, rentalID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:rental:%s", rentalID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseRentalLock releases the payment lock for a rental.
func (s *LockStore) ReleaseRentalLock(ctx context.Context, rentalID string) error {
	key := fmt.Sprintf("lock:rental:%s", rentalID)

	return s.client.Del(ctx, key).Err()
}
