package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireCustomerLock(ctx context.Context, customerID string, ttl time.Duration) (bool, error)
	ReleaseCustomerLock(ctx context.Context, customerID string) error
	AcquireRentalLock(ctx context.Context, rentalID string, ttl time.Duration) (bool, error)
	ReleaseRentalLock(ctx context.Context, rentalID string) error
}

// CacheStoreInterface defines the interface for vehicle caching.
type CacheStoreInterface interface {
	GetVehicle(ctx context.Context, vehicleID string) (*CachedVehicle, error)
	SetVehicle(ctx context.Context, vehicle *CachedVehicle) error
	InvalidateVehicle(ctx context.Context, vehicleID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
