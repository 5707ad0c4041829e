package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// CustomerRepository is a read-only PostgreSQL view over customer records.
// The identity service owns the table; this service never writes to it.
type CustomerRepository struct {
	q Querier
}

// NewCustomerRepository creates a new PostgreSQL customer repository.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{q: db}
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `
		SELECT id, name, email, role, telegram_chat_id
		FROM customers WHERE id = $1
	`

	var customer domain.Customer
	var chatID sql.NullInt64
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Role,
		&chatID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if chatID.Valid {
		customer.TelegramChatID = chatID.Int64
	}

	return &customer, nil
}
