package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

// Create adds a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, brand, model, type, inventory, daily_fee, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, false)
	`

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.Brand,
		vehicle.Model,
		vehicle.Type,
		vehicle.Inventory,
		vehicle.DailyFee,
	)

	return err
}

// GetByID retrieves a vehicle by ID. Soft-deleted vehicles are not returned.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `
		SELECT id, brand, model, type, inventory, daily_fee, deleted
		FROM vehicles WHERE id = $1 AND deleted = false
	`

	var vehicle domain.Vehicle
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.Brand,
		&vehicle.Model,
		&vehicle.Type,
		&vehicle.Inventory,
		&vehicle.DailyFee,
		&vehicle.Deleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &vehicle, nil
}

// GetAll retrieves all non-deleted vehicles.
func (r *VehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	query := `
		SELECT id, brand, model, type, inventory, daily_fee, deleted
		FROM vehicles WHERE deleted = false ORDER BY brand, model
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		var vehicle domain.Vehicle
		if err := rows.Scan(
			&vehicle.ID,
			&vehicle.Brand,
			&vehicle.Model,
			&vehicle.Type,
			&vehicle.Inventory,
			&vehicle.DailyFee,
			&vehicle.Deleted,
		); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &vehicle)
	}
	return vehicles, rows.Err()
}

// Update updates the descriptive attributes and daily fee of a vehicle.
// Inventory changes only through ReserveUnit/ReleaseUnit.
func (r *VehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		UPDATE vehicles
		SET brand = $1, model = $2, type = $3, daily_fee = $4
		WHERE id = $5 AND deleted = false
	`

	result, err := r.q.ExecContext(ctx, query,
		vehicle.Brand,
		vehicle.Model,
		vehicle.Type,
		vehicle.DailyFee,
		vehicle.ID,
	)
	if err != nil {
		return err
	}

	return requireRowsAffected(result)
}

// SoftDelete marks a vehicle as deleted. Rows are never removed.
func (r *VehicleRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE vehicles SET deleted = true WHERE id = $1 AND deleted = false`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(result)
}

// ReserveUnit atomically decrements the available unit count. The decrement
// is guarded by the inventory check in the same statement, so two concurrent
// reservations against the last unit cannot both succeed.
func (r *VehicleRepository) ReserveUnit(ctx context.Context, id string) error {
	query := `
		UPDATE vehicles SET inventory = inventory - 1
		WHERE id = $1 AND deleted = false AND inventory > 0
	`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a missing vehicle from an exhausted one.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrNoInventory
	}

	return nil
}

// ReleaseUnit atomically increments the available unit count. It ignores the
// deleted flag: a rental on a vehicle delisted mid-rental must still return
// its unit. There is no upper-bound check; releasing more units than were
// reserved is a caller bug.
func (r *VehicleRepository) ReleaseUnit(ctx context.Context, id string) error {
	query := `UPDATE vehicles SET inventory = inventory + 1 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(result)
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
