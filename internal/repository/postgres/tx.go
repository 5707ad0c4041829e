package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carshare/internal/repository"
)

// TxManager implements repository.TxManager on top of *sql.DB. Each call
// opens one transaction and hands the callback repositories bound to it.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn inside a single transaction, committing on success and
// rolling back when fn returns an error.
func (m *TxManager) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	repos := repository.Repositories{
		Vehicles: NewVehicleRepositoryWithTx(tx),
		Rentals:  NewRentalRepositoryWithTx(tx),
		Payments: NewPaymentRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
