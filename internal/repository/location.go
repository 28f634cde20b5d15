package repository

import (
	"context"

	"carpool/internal/domain"
)

// LocationFilter narrows a latest-per-actor query.
type LocationFilter struct {
	Role   domain.ActorRole // zero value means both roles
	TripID string           // non-empty restricts to one trip's samples
}

// LocationRepository defines the persistence operations for location
// samples. The table is append-only: there is no update or delete.
type LocationRepository interface {
	// Insert appends one sample row. It never updates an existing row.
	Insert(ctx context.Context, sample *domain.LocationSample) error

	// LatestPerActor retrieves the most recent sample for each distinct
	// actor matching the filter.
	LatestPerActor(ctx context.Context, filter LocationFilter) ([]*domain.LocationSample, error)

	// HistoryByActor retrieves an actor's samples, newest first.
	HistoryByActor(ctx context.Context, actorID string, limit int) ([]*domain.LocationSample, error)
}
