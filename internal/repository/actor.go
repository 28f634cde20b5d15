package repository

import (
	"context"

	"carpool/internal/domain"
)

// ActorRepository defines the persistence operations for actors.
type ActorRepository interface {
	// Create adds a new actor.
	Create(ctx context.Context, actor *domain.Actor) error

	// GetByID retrieves an actor by ID.
	GetByID(ctx context.Context, id string) (*domain.Actor, error)

	// GetByPhone retrieves an actor by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Actor, error)

	// GetAll retrieves all actors.
	GetAll(ctx context.Context) ([]*domain.Actor, error)
}
