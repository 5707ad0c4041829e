package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carshare/internal/domain"
	"carshare/internal/redis"
	"carshare/internal/repository"
)

// FleetService manages the vehicle catalogue. Inventory counts are not
// mutated here; reservations go through the rental lifecycle.
type FleetService struct {
	vehicleRepo repository.VehicleRepository
	cacheStore  redis.CacheStoreInterface
}

// NewFleetService creates a new FleetService.
func NewFleetService(vehicleRepo repository.VehicleRepository, cacheStore redis.CacheStoreInterface) *FleetService {
	return &FleetService{
		vehicleRepo: vehicleRepo,
		cacheStore:  cacheStore,
	}
}

// CreateVehicleRequest contains the parameters for adding a vehicle.
type CreateVehicleRequest struct {
	Brand     string
	Model     string
	Type      string
	Inventory int
	DailyFee  float64
}

// CreateVehicle adds a new vehicle to the fleet.
func (s *FleetService) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*domain.Vehicle, error) {
	vehicleType, err := ValidateVehicleType(req.Type)
	if err != nil {
		return nil, err
	}
	if req.DailyFee <= 0 {
		return nil, ErrInvalidDailyFee
	}
	if req.Inventory < 0 {
		return nil, ErrInvalidInventory
	}

	vehicle := &domain.Vehicle{
		ID:        uuid.New().String(),
		Brand:     req.Brand,
		Model:     req.Model,
		Type:      vehicleType,
		Inventory: req.Inventory,
		DailyFee:  req.DailyFee,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	return vehicle, nil
}

// GetVehicle retrieves a vehicle, serving from cache when possible.
func (s *FleetService) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetVehicle(ctx, vehicleID)
		if err != nil {
			zap.S().Warnw("vehicle cache read failed", "vehicle_id", vehicleID, "error", err)
		} else if cached != nil {
			return cachedToVehicle(cached), nil
		}
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		if err := s.cacheStore.SetVehicle(ctx, vehicleToCached(vehicle)); err != nil {
			zap.S().Warnw("vehicle cache write failed", "vehicle_id", vehicleID, "error", err)
		}
	}

	return vehicle, nil
}

// ListVehicles retrieves all non-deleted vehicles.
func (s *FleetService) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.GetAll(ctx)
}

// UpdateVehicleRequest contains the parameters for updating a vehicle.
type UpdateVehicleRequest struct {
	VehicleID string
	Brand     string
	Model     string
	Type      string
	DailyFee  float64
}

// UpdateVehicle updates a vehicle's descriptive attributes and daily fee.
func (s *FleetService) UpdateVehicle(ctx context.Context, req UpdateVehicleRequest) (*domain.Vehicle, error) {
	if req.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	vehicleType, err := ValidateVehicleType(req.Type)
	if err != nil {
		return nil, err
	}
	if req.DailyFee <= 0 {
		return nil, ErrInvalidDailyFee
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	vehicle.Brand = req.Brand
	vehicle.Model = req.Model
	vehicle.Type = vehicleType
	vehicle.DailyFee = req.DailyFee

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, req.VehicleID)

	return vehicle, nil
}

// DeleteVehicle soft-deletes a vehicle. Historical rentals keep referencing it.
func (s *FleetService) DeleteVehicle(ctx context.Context, vehicleID string) error {
	if vehicleID == "" {
		return ErrInvalidVehicleID
	}

	if err := s.vehicleRepo.SoftDelete(ctx, vehicleID); err != nil {
		return err
	}

	s.invalidateCache(ctx, vehicleID)

	return nil
}

func (s *FleetService) invalidateCache(ctx context.Context, vehicleID string) {
	if s.cacheStore == nil {
		return
	}
	if err := s.cacheStore.InvalidateVehicle(ctx, vehicleID); err != nil {
		zap.S().Warnw("vehicle cache invalidation failed", "vehicle_id", vehicleID, "error", err)
	}
}

// ValidateVehicleType validates a vehicle type string.
func ValidateVehicleType(t string) (domain.VehicleType, error) {
	switch domain.VehicleType(t) {
	case domain.VehicleTypeSedan, domain.VehicleTypeSUV,
		domain.VehicleTypeHatchback, domain.VehicleTypeUniversal:
		return domain.VehicleType(t), nil
	default:
		return "", ErrInvalidVehicleType
	}
}

func cachedToVehicle(cached *redis.CachedVehicle) *domain.Vehicle {
	return &domain.Vehicle{
		ID:        cached.ID,
		Brand:     cached.Brand,
		Model:     cached.Model,
		Type:      domain.VehicleType(cached.Type),
		Inventory: cached.Inventory,
		DailyFee:  cached.DailyFee,
	}
}

func vehicleToCached(vehicle *domain.Vehicle) *redis.CachedVehicle {
	return &redis.CachedVehicle{
		ID:        vehicle.ID,
		Brand:     vehicle.Brand,
		Model:     vehicle.Model,
		Type:      string(vehicle.Type),
		Inventory: vehicle.Inventory,
		DailyFee:  vehicle.DailyFee,
	}
}
