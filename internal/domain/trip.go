package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusScheduled TripStatus = "SCHEDULED"
	TripStatusActive    TripStatus = "ACTIVE"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Trip represents a driver-posted journey offer.
type Trip struct {
	ID             string
	DriverID       string
	Origin         string
	Destination    string
	OriginCoords   *Coordinates // nil when the driver typed a free-form label
	DestCoords     *Coordinates
	DepartureTime  time.Time
	Seats          int
	AvailableSeats int
	PricePerSeat   float64
	Status         TripStatus
	CreatedAt      time.Time
}

// HasRoute reports whether both endpoints carry coordinates, which is
// what the live map needs to fit the viewport to the trip.
func (t *Trip) HasRoute() bool {
	return t.OriginCoords != nil && t.DestCoords != nil
}
