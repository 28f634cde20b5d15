package domain

import "time"

// ActorRole distinguishes the two kinds of participants.
type ActorRole string

const (
	RoleDriver    ActorRole = "DRIVER"
	RolePassenger ActorRole = "PASSENGER"
)

// Actor represents a registered user, either a driver or a passenger.
type Actor struct {
	ID        string
	Name      string
	Phone     string
	Role      ActorRole
	CreatedAt time.Time
}
