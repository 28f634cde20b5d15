package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusAccepted  BookingStatus = "ACCEPTED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking represents a passenger's request to join a trip.
type Booking struct {
	ID          string
	TripID      string
	PassengerID string
	Seats       int
	Status      BookingStatus
	Message     string // optional note from the passenger to the driver
	CreatedAt   time.Time
}
