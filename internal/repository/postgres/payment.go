package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// paymentsOnePaidConstraint is the partial unique index on (rental_id)
// WHERE status = 'PAID'. It backs the at-most-one-paid-payment-per-rental
// rule at the database level.
const paymentsOnePaidConstraint = "payments_one_paid_per_rental"

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, rental_id, status, type, amount, session_id, session_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.RentalID,
		payment.Status,
		payment.Type,
		payment.Amount,
		payment.SessionID,
		payment.SessionURL,
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `
		SELECT id, rental_id, status, type, amount, session_id, session_url
		FROM payments WHERE id = $1
	`

	var payment domain.Payment
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.RentalID,
		&payment.Status,
		&payment.Type,
		&payment.Amount,
		&payment.SessionID,
		&payment.SessionURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &payment, nil
}

// GetPaidByRentalID retrieves the PAID payment for a rental, or nil.
func (r *PaymentRepository) GetPaidByRentalID(ctx context.Context, rentalID string) (*domain.Payment, error) {
	query := `
		SELECT id, rental_id, status, type, amount, session_id, session_url
		FROM payments WHERE rental_id = $1 AND status = $2
	`

	var payment domain.Payment
	err := r.q.QueryRowContext(ctx, query, rentalID, domain.PaymentStatusPaid).Scan(
		&payment.ID,
		&payment.RentalID,
		&payment.Status,
		&payment.Type,
		&payment.Amount,
		&payment.SessionID,
		&payment.SessionURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &payment, nil
}

// ListByCustomerID retrieves all payments for rentals owned by the customer.
func (r *PaymentRepository) ListByCustomerID(ctx context.Context, customerID string) ([]*domain.Payment, error) {
	query := `
		SELECT p.id, p.rental_id, p.status, p.type, p.amount, p.session_id, p.session_url
		FROM payments p
		JOIN rentals r ON r.id = p.rental_id
		WHERE r.customer_id = $1
		ORDER BY p.id
	`

	rows, err := r.q.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.RentalID,
			&payment.Status,
			&payment.Type,
			&payment.Amount,
			&payment.SessionID,
			&payment.SessionURL,
		); err != nil {
			return nil, err
		}
		payments = append(payments, &payment)
	}
	return payments, rows.Err()
}

// UpdateStatus updates the status of a payment. Transitioning to PAID when
// another payment for the same rental is already PAID violates the partial
// unique index and returns ErrPaidConflict.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" &&
			pqErr.Constraint == paymentsOnePaidConstraint {
			return repository.ErrPaidConflict
		}
		return err
	}

	return requireRowsAffected(result)
}
