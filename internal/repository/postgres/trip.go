package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, driver_id, origin, destination, origin_lat, origin_lng, dest_lat, dest_lng,
	departure_time, seats, available_seats, price_per_seat, status, created_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	originLat, originLng := coordsToNull(trip.OriginCoords)
	destLat, destLng := coordsToNull(trip.DestCoords)

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.DriverID,
		trip.Origin,
		trip.Destination,
		originLat,
		originLng,
		destLat,
		destLng,
		trip.DepartureTime,
		trip.Seats,
		trip.AvailableSeats,
		trip.PricePerSeat,
		trip.Status,
		trip.CreatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

// Search retrieves scheduled trips matching the given filters.
func (r *TripRepository) Search(ctx context.Context, filter repository.TripSearch) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE status = $1
		  AND ($2 = '' OR origin ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR destination ILIKE '%' || $3 || '%')
		  AND ($4::timestamptz IS NULL OR departure_time::date = $4::date)
		ORDER BY departure_time ASC
		LIMIT 100
	`

	var date sql.NullTime
	if !filter.Date.IsZero() {
		date = sql.NullTime{Time: filter.Date, Valid: true}
	}

	rows, err := r.q.QueryContext(ctx, query, domain.TripStatusScheduled, filter.Origin, filter.Destination, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

// GetByDriverID retrieves all trips posted by a driver.
func (r *TripRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE driver_id = $1 ORDER BY departure_time DESC`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET origin = $1, destination = $2, origin_lat = $3, origin_lng = $4, dest_lat = $5, dest_lng = $6,
		    departure_time = $7, seats = $8, available_seats = $9, price_per_seat = $10, status = $11
		WHERE id = $12
	`

	originLat, originLng := coordsToNull(trip.OriginCoords)
	destLat, destLng := coordsToNull(trip.DestCoords)

	result, err := r.q.ExecContext(ctx, query,
		trip.Origin,
		trip.Destination,
		originLat,
		originLng,
		destLat,
		destLng,
		trip.DepartureTime,
		trip.Seats,
		trip.AvailableSeats,
		trip.PricePerSeat,
		trip.Status,
		trip.ID,
	)
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

// AdjustSeats applies delta to available_seats, guarded in SQL so the
// read-modify-write cannot race another accept or cancel.
func (r *TripRepository) AdjustSeats(ctx context.Context, id string, delta int) error {
	query := `
		UPDATE trips
		SET available_seats = available_seats + $1
		WHERE id = $2 AND available_seats + $1 BETWEEN 0 AND seats
	`

	result, err := r.q.ExecContext(ctx, query, delta, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrConflict
	}

	return nil
}

// Delete removes a trip.
func (r *TripRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
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

// rowScanner abstracts *sql.Row and *sql.Rows for scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var originLat, originLng, destLat, destLng sql.NullFloat64

	err := row.Scan(
		&trip.ID,
		&trip.DriverID,
		&trip.Origin,
		&trip.Destination,
		&originLat,
		&originLng,
		&destLat,
		&destLng,
		&trip.DepartureTime,
		&trip.Seats,
		&trip.AvailableSeats,
		&trip.PricePerSeat,
		&trip.Status,
		&trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	trip.OriginCoords = nullToCoords(originLat, originLng)
	trip.DestCoords = nullToCoords(destLat, destLng)

	return &trip, nil
}

func scanTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func coordsToNull(c *domain.Coordinates) (lat, lng sql.NullFloat64) {
	if c == nil {
		return
	}
	return sql.NullFloat64{Float64: c.Lat, Valid: true}, sql.NullFloat64{Float64: c.Lng, Valid: true}
}

func nullToCoords(lat, lng sql.NullFloat64) *domain.Coordinates {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
