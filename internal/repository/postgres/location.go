package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// LocationRepository is a PostgreSQL implementation of
// repository.LocationRepository. Rows are append-only; the latest
// sample per actor is resolved with DISTINCT ON.
type LocationRepository struct {
	q Querier
}

// NewLocationRepository creates a new PostgreSQL location repository.
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{q: db}
}

const locationColumns = `l.id, l.actor_id, l.trip_id, l.lat, l.lng, l.heading, l.speed, l.recorded_at`

// Insert appends one sample row. It never updates an existing row.
func (r *LocationRepository) Insert(ctx context.Context, sample *domain.LocationSample) error {
	query := `
		INSERT INTO location_samples (id, actor_id, trip_id, lat, lng, heading, speed, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var tripID sql.NullString
	if sample.TripID != "" {
		tripID = sql.NullString{String: sample.TripID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		sample.ID,
		sample.ActorID,
		tripID,
		sample.Lat,
		sample.Lng,
		nullFloat(sample.Heading),
		nullFloat(sample.Speed),
		sample.RecordedAt,
	)
	if err != nil {
		// Row-level policy denials and constraint violations come back
		// as pq errors; surface them as a store rejection so callers
		// can stop the sharing stream.
		if _, ok := err.(*pq.Error); ok {
			return repository.ErrWriteRejected
		}
		return err
	}

	return nil
}

// LatestPerActor retrieves the most recent sample for each distinct
// actor matching the filter. The id tiebreak keeps repeated queries on
// the same snapshot stable when two rows share a timestamp.
func (r *LocationRepository) LatestPerActor(ctx context.Context, filter repository.LocationFilter) ([]*domain.LocationSample, error) {
	query := `
		SELECT DISTINCT ON (l.actor_id) ` + locationColumns + `
		FROM location_samples l
		JOIN actors a ON a.id = l.actor_id
		WHERE ($1 = '' OR a.role = $1)
		  AND ($2 = '' OR l.trip_id = $2)
		ORDER BY l.actor_id, l.recorded_at DESC, l.id DESC
	`

	rows, err := r.q.QueryContext(ctx, query, string(filter.Role), filter.TripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSamples(rows)
}

// HistoryByActor retrieves an actor's samples, newest first.
func (r *LocationRepository) HistoryByActor(ctx context.Context, actorID string, limit int) ([]*domain.LocationSample, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM location_samples l
		WHERE l.actor_id = $1
		ORDER BY l.recorded_at DESC
		LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSamples(rows)
}

func scanSamples(rows *sql.Rows) ([]*domain.LocationSample, error) {
	var samples []*domain.LocationSample
	for rows.Next() {
		var sample domain.LocationSample
		var tripID sql.NullString
		var heading, speed sql.NullFloat64

		if err := rows.Scan(
			&sample.ID,
			&sample.ActorID,
			&tripID,
			&sample.Lat,
			&sample.Lng,
			&heading,
			&speed,
			&sample.RecordedAt,
		); err != nil {
			return nil, err
		}

		if tripID.Valid {
			sample.TripID = tripID.String
		}
		if heading.Valid {
			sample.Heading = &heading.Float64
		}
		if speed.Valid {
			sample.Speed = &speed.Float64
		}

		samples = append(samples, &sample)
	}

	return samples, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// Ensure LocationRepository implements repository.LocationRepository.
var _ repository.LocationRepository = (*LocationRepository)(nil)
