package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// rentalsOneOpenConstraint is the partial unique index on (customer_id)
// WHERE actual_return_date IS NULL. It backs the one-open-rental-per-customer
// rule at the database level.
const rentalsOneOpenConstraint = "rentals_one_open_per_customer"

// RentalRepository is a PostgreSQL implementation of repository.RentalRepository.
type RentalRepository struct {
	q Querier
}

// NewRentalRepository creates a new PostgreSQL rental repository.
func NewRentalRepository(db *sql.DB) *RentalRepository {
	return &RentalRepository{q: db}
}

// NewRentalRepositoryWithTx creates a rental repository using a transaction.
func NewRentalRepositoryWithTx(tx *sql.Tx) *RentalRepository {
	return &RentalRepository{q: tx}
}

// Create persists a new rental.
func (r *RentalRepository) Create(ctx context.Context, rental *domain.Rental) error {
	query := `
		INSERT INTO rentals (id, customer_id, vehicle_id, rental_date, return_date, actual_return_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var actualReturnDate sql.NullTime
	if !rental.ActualReturnDate.IsZero() {
		actualReturnDate = sql.NullTime{Time: rental.ActualReturnDate, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		rental.ID,
		rental.CustomerID,
		rental.VehicleID,
		rental.RentalDate,
		rental.ReturnDate,
		actualReturnDate,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" &&
			pqErr.Constraint == rentalsOneOpenConstraint {
			return repository.ErrOpenRentalConflict
		}
		return err
	}

	return nil
}

// GetByID retrieves a rental by ID.
func (r *RentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	query := `
		SELECT id, customer_id, vehicle_id, rental_date, return_date, actual_return_date
		FROM rentals WHERE id = $1
	`

	rental, err := scanRental(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return rental, nil
}

// List retrieves rentals matching the filter. Filters compose with AND.
func (r *RentalRepository) List(ctx context.Context, filter repository.RentalFilter) ([]*domain.Rental, error) {
	query := `
		SELECT id, customer_id, vehicle_id, rental_date, return_date, actual_return_date
		FROM rentals WHERE 1=1
	`
	args := []any{}

	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		query += ` AND customer_id = $1`
	}
	if filter.Active != nil {
		if *filter.Active {
			query += ` AND actual_return_date IS NULL`
		} else {
			query += ` AND actual_return_date IS NOT NULL`
		}
	}
	query += ` ORDER BY rental_date DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []*domain.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	return rentals, rows.Err()
}

// GetOpenByCustomerID retrieves the customer's open rental, or nil.
func (r *RentalRepository) GetOpenByCustomerID(ctx context.Context, customerID string) (*domain.Rental, error) {
	query := `
		SELECT id, customer_id, vehicle_id, rental_date, return_date, actual_return_date
		FROM rentals WHERE customer_id = $1 AND actual_return_date IS NULL
	`

	rental, err := scanRental(r.q.QueryRowContext(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return rental, nil
}

// Close sets the actual return date. The WHERE clause makes the close
// conditional on the rental still being open, so a closed rental can never
// be re-closed or have its return date changed.
func (r *RentalRepository) Close(ctx context.Context, id string, returnedAt time.Time) error {
	query := `
		UPDATE rentals SET actual_return_date = $1
		WHERE id = $2 AND actual_return_date IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, returnedAt, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrAlreadyClosed
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	var rental domain.Rental
	var actualReturnDate sql.NullTime

	if err := row.Scan(
		&rental.ID,
		&rental.CustomerID,
		&rental.VehicleID,
		&rental.RentalDate,
		&rental.ReturnDate,
		&actualReturnDate,
	); err != nil {
		return nil, err
	}

	if actualReturnDate.Valid {
		rental.ActualReturnDate = actualReturnDate.Time
	}

	return &rental, nil
}
