package repository

import "context"

// UnitOfWork runs booking and trip mutations in one transaction, so an
// accepted booking and its seat decrement land (or fail) together.
type UnitOfWork interface {
	// WithinTx executes fn with transaction-scoped repositories. fn
	// returning an error rolls the transaction back; otherwise it is
	// committed.
	WithinTx(ctx context.Context, fn func(bookings BookingRepository, trips TripRepository) error) error
}
