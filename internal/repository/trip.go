package repository

import (
	"context"
	"time"

	"carpool/internal/domain"
)

// TripSearch holds the optional filters for a trip search.
type TripSearch struct {
	Origin      string
	Destination string
	Date        time.Time // zero value means any date
}

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// Search retrieves scheduled trips matching the given filters.
	Search(ctx context.Context, filter TripSearch) ([]*domain.Trip, error)

	// GetByDriverID retrieves all trips posted by a driver.
	GetByDriverID(ctx context.Context, driverID string) ([]*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// AdjustSeats applies delta to the trip's available seats in one
	// conditional statement, so concurrent adjustments cannot lose each
	// other's writes. ErrConflict when the result would leave 0..seats.
	AdjustSeats(ctx context.Context, id string, delta int) error

	// Delete removes a trip.
	Delete(ctx context.Context, id string) error
}
