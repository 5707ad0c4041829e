package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// VehicleCacheTTL is short because inventory moves with every booking;
// reads that need exact counts go to the database anyway.
const VehicleCacheTTL = 30 * time.Second

const vehicleCachePrefix = "cache:vehicle:"

// CachedVehicle represents a cached vehicle entity.
type CachedVehicle struct {
	ID        string  `json:"id"`
	Brand     string  `json:"brand"`
	Model     string  `json:"model"`
	Type      string  `json:"type"`
	Inventory int     `json:"inventory"`
	DailyFee  float64 `json:"daily_fee"`
}

// GetVehicle retrieves a vehicle from cache. Returns nil on a cache miss.
func (s *CacheStore) GetVehicle(ctx context.Context, vehicleID string) (*CachedVehicle, error) {
	key := vehicleCachePrefix + vehicleID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var vehicle CachedVehicle
	if err := json.Unmarshal(data, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// SetVehicle stores a vehicle in cache.
func (s *CacheStore) SetVehicle(ctx context.Context, vehicle *CachedVehicle) error {
	key := vehicleCachePrefix + vehicle.ID
	data, err := json.Marshal(vehicle)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, VehicleCacheTTL).Err()
}

// InvalidateVehicle removes a vehicle from cache.
func (s *CacheStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	key := vehicleCachePrefix + vehicleID
	return s.client.Del(ctx, key).Err()
}
