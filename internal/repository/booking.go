package repository

import (
	"context"

	"carpool/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByTripID retrieves all bookings for a trip.
	GetByTripID(ctx context.Context, tripID string) ([]*domain.Booking, error)

	// GetByPassengerID retrieves all bookings made by a passenger.
	GetByPassengerID(ctx context.Context, passengerID string) ([]*domain.Booking, error)

	// CountAcceptedByTripID counts accepted bookings on a trip.
	CountAcceptedByTripID(ctx context.Context, tripID string) (int, error)

	// UpdateStatus updates the status of a booking.
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
}
