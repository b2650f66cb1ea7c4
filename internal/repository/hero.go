package repository

import (
	"context"

	"heroes/internal/model"
)

// HeroRepository defines data access for heroes.
// No business logic here; strictly persistence operations.
// Implementations report a missing hero with sql.ErrNoRows so callers can map
// not-found uniformly regardless of the backing store.
type HeroRepository interface {
	// List returns every hero ordered by ID.
	List(ctx context.Context) ([]model.Hero, error)

	// Search returns heroes whose name contains term, case-insensitively, ordered by ID.
	Search(ctx context.Context, term string) ([]model.Hero, error)

	// FindByID returns a hero by its ID.
	FindByID(ctx context.Context, id int) (*model.Hero, error)

	// Create stores a new hero and returns it with the ID assigned by the store.
	Create(ctx context.Context, in model.HeroInput) (*model.Hero, error)

	// Update replaces the stored hero with the same ID.
	Update(ctx context.Context, h model.Hero) (*model.Hero, error)

	// Delete removes a hero by ID and returns the removed record.
	Delete(ctx context.Context, id int) (*model.Hero, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
