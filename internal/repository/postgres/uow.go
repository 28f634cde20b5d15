package postgres

import (
	"context"
	"database/sql"

	"carpool/internal/repository"
)

// UnitOfWork coordinates transactional execution against the database.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork constructs a UnitOfWork bound to the given database.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithinTx executes fn with transaction-scoped repositories. The
// transaction is rolled back when fn returns an error or panics, and
// committed otherwise.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(bookings repository.BookingRepository, trips repository.TripRepository) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(NewBookingRepositoryWithTx(tx), NewTripRepositoryWithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Ensure UnitOfWork implements repository.UnitOfWork.
var _ repository.UnitOfWork = (*UnitOfWork)(nil)
