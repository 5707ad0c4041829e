package tests

import (
	"context"
	"errors"
	"testing"

	"carshare/internal/domain"
	"carshare/internal/repository"
	"carshare/internal/service"
)

// ──────────────────────────────────────────────
// 5. FLEET CATALOGUE
// ──────────────────────────────────────────────

func newFleetFixture() (*service.FleetService, *MockVehicleRepository, *MockCacheStore) {
	vehicleRepo := NewMockVehicleRepository()
	cacheStore := NewMockCacheStore()
	return service.NewFleetService(vehicleRepo, cacheStore), vehicleRepo, cacheStore
}

func TestCreateVehicle_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     service.CreateVehicleRequest
		wantErr error
	}{
		{
			name: "valid sedan",
			req:  service.CreateVehicleRequest{Brand: "Toyota", Model: "Corolla", Type: "SEDAN", Inventory: 5, DailyFee: 100},
		},
		{
			name:    "unknown type",
			req:     service.CreateVehicleRequest{Brand: "Tesla", Model: "X", Type: "SPACESHIP", Inventory: 1, DailyFee: 500},
			wantErr: service.ErrInvalidVehicleType,
		},
		{
			name:    "zero daily fee",
			req:     service.CreateVehicleRequest{Brand: "Fiat", Model: "500", Type: "HATCHBACK", Inventory: 1, DailyFee: 0},
			wantErr: service.ErrInvalidDailyFee,
		},
		{
			name:    "negative inventory",
			req:     service.CreateVehicleRequest{Brand: "Fiat", Model: "500", Type: "HATCHBACK", Inventory: -1, DailyFee: 40},
			wantErr: service.ErrInvalidInventory,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fleet, _, _ := newFleetFixture()
			vehicle, err := fleet.CreateVehicle(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if vehicle.ID == "" {
				t.Error("expected a generated vehicle ID")
			}
		})
	}
}

func TestGetVehicle_CacheReadThrough(t *testing.T) {
	t.Parallel()

	fleet, vehicleRepo, cacheStore := newFleetFixture()
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:        "vehicle-1",
		Brand:     "Toyota",
		Model:     "Corolla",
		Type:      domain.VehicleTypeSedan,
		Inventory: 3,
		DailyFee:  100,
	})

	// First read misses the cache and fills it.
	vehicle, err := fleet.GetVehicle(context.Background(), "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vehicle.Brand != "Toyota" {
		t.Errorf("unexpected vehicle: %+v", vehicle)
	}
	if !cacheStore.Cached("vehicle-1") {
		t.Error("expected the vehicle to be cached after a read")
	}

	// Second read is served from cache.
	if _, err := fleet.GetVehicle(context.Background(), "vehicle-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cacheStore.SetCallCount != 1 {
		t.Errorf("expected 1 cache fill, got %d", cacheStore.SetCallCount)
	}
}

func TestUpdateVehicle_InvalidatesCache(t *testing.T) {
	t.Parallel()

	fleet, vehicleRepo, cacheStore := newFleetFixture()
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:        "vehicle-1",
		Brand:     "Toyota",
		Model:     "Corolla",
		Type:      domain.VehicleTypeSedan,
		Inventory: 3,
		DailyFee:  100,
	})

	// Warm the cache.
	if _, err := fleet.GetVehicle(context.Background(), "vehicle-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := fleet.UpdateVehicle(context.Background(), service.UpdateVehicleRequest{
		VehicleID: "vehicle-1",
		Brand:     "Toyota",
		Model:     "Corolla Hybrid",
		Type:      "SEDAN",
		DailyFee:  120,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DailyFee != 120 {
		t.Errorf("expected daily fee 120, got %v", updated.DailyFee)
	}

	// A stale cache entry would serve the old fee.
	if cacheStore.Cached("vehicle-1") {
		t.Error("expected cache invalidation after update")
	}
}

func TestDeleteVehicle_SoftDelete(t *testing.T) {
	t.Parallel()

	fleet, vehicleRepo, _ := newFleetFixture()
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:        "vehicle-1",
		Type:      domain.VehicleTypeSUV,
		Inventory: 2,
		DailyFee:  150,
	})

	if err := fleet.DeleteVehicle(context.Background(), "vehicle-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := fleet.GetVehicle(context.Background(), "vehicle-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	vehicles, err := fleet.ListVehicles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 0 {
		t.Errorf("deleted vehicle still listed: %v", vehicles)
	}

	// Deleting twice reports the vehicle as gone.
	if err := fleet.DeleteVehicle(context.Background(), "vehicle-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}
