package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, trip_id, passenger_id, seats, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.TripID,
		booking.PassengerID,
		booking.Seats,
		booking.Status,
		booking.Message,
		booking.CreatedAt,
	)

	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT id, trip_id, passenger_id, seats, status, message, created_at
		FROM bookings WHERE id = $1
	`

	var booking domain.Booking
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.TripID,
		&booking.PassengerID,
		&booking.Seats,
		&booking.Status,
		&booking.Message,
		&booking.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &booking, nil
}

// GetByTripID retrieves all bookings for a trip.
func (r *BookingRepository) GetByTripID(ctx context.Context, tripID string) ([]*domain.Booking, error) {
	query := `
		SELECT id, trip_id, passenger_id, seats, status, message, created_at
		FROM bookings WHERE trip_id = $1 ORDER BY created_at ASC
	`
	return r.list(ctx, query, tripID)
}

// GetByPassengerID retrieves all bookings made by a passenger.
func (r *BookingRepository) GetByPassengerID(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	query := `
		SELECT id, trip_id, passenger_id, seats, status, message, created_at
		FROM bookings WHERE passenger_id = $1 ORDER BY created_at DESC
	`
	return r.list(ctx, query, passengerID)
}

// CountAcceptedByTripID counts accepted bookings on a trip.
func (r *BookingRepository) CountAcceptedByTripID(ctx context.Context, tripID string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE trip_id = $1 AND status = $2`

	var count int
	err := r.q.QueryRowContext(ctx, query, tripID, domain.BookingStatusAccepted).Scan(&count)
	return count, err
}

// UpdateStatus updates the status of a booking.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE bookings SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *BookingRepository) list(ctx context.Context, query string, arg any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		var booking domain.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.TripID,
			&booking.PassengerID,
			&booking.Seats,
			&booking.Status,
			&booking.Message,
			&booking.CreatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, &booking)
	}

	return bookings, rows.Err()
}

// Ensure BookingRepository implements repository.BookingRepository.
var _ repository.BookingRepository = (*BookingRepository)(nil)
