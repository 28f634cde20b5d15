package postgres

import (
	"context"
	"database/sql"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// ActorRepository implements repository.ActorRepository using PostgreSQL.
type ActorRepository struct {
	db *sql.DB
}

// NewActorRepository creates a new ActorRepository.
func NewActorRepository(db *sql.DB) *ActorRepository {
	return &ActorRepository{db: db}
}

// Create adds a new actor.
func (r *ActorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	query := `INSERT INTO actors (id, name, phone, role) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, actor.ID, actor.Name, actor.Phone, actor.Role)
	return err
}

// GetByID retrieves an actor by ID.
func (r *ActorRepository) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	query := `SELECT id, name, phone, role, created_at FROM actors WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var actor domain.Actor
	err := row.Scan(&actor.ID, &actor.Name, &actor.Phone, &actor.Role, &actor.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

// GetByPhone retrieves an actor by phone number.
func (r *ActorRepository) GetByPhone(ctx context.Context, phone string) (*domain.Actor, error) {
	query := `SELECT id, name, phone, role, created_at FROM actors WHERE phone = $1`
	row := r.db.QueryRowContext(ctx, query, phone)

	var actor domain.Actor
	err := row.Scan(&actor.ID, &actor.Name, &actor.Phone, &actor.Role, &actor.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

// GetAll retrieves all actors.
func (r *ActorRepository) GetAll(ctx context.Context) ([]*domain.Actor, error) {
	query := `SELECT id, name, phone, role, created_at FROM actors ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actors []*domain.Actor
	for rows.Next() {
		var actor domain.Actor
		if err := rows.Scan(&actor.ID, &actor.Name, &actor.Phone, &actor.Role, &actor.CreatedAt); err != nil {
			return nil, err
		}
		actors = append(actors, &actor)
	}
	return actors, rows.Err()
}

// Ensure ActorRepository implements repository.ActorRepository.
var _ repository.ActorRepository = (*ActorRepository)(nil)
