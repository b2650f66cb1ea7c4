package postgres

import (
	"context"
	"database/sql"
	"errors"

	"heroes/internal/model"
	"heroes/internal/repository"
)

// HeroPostgres is a PostgreSQL implementation of repository.HeroRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type HeroPostgres struct {
	db *sql.DB
}

// NewHeroPostgres creates a new HeroPostgres repository.
func NewHeroPostgres(db *sql.DB) *HeroPostgres {
	return &HeroPostgres{db: db}
}

var _ repository.HeroRepository = (*HeroPostgres)(nil)

// List returns every hero ordered by ID.
func (r *HeroPostgres) List(ctx context.Context) ([]model.Hero, error) {
	const q = `SELECT id, name FROM heroes ORDER BY id`
	return r.query(ctx, q)
}

// Search returns heroes whose name contains term, ignoring case.
func (r *HeroPostgres) Search(ctx context.Context, term string) ([]model.Hero, error) {
	const q = `
		SELECT id, name
		FROM heroes
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
	`
	return r.query(ctx, q, escapeLike(term))
}

// FindByID fetches a single hero by its ID.
func (r *HeroPostgres) FindByID(ctx context.Context, id int) (*model.Hero, error) {
	const q = `SELECT id, name FROM heroes WHERE id = $1`
	return r.queryRow(ctx, q, id)
}

// Create inserts a new hero row and returns the stored record.
func (r *HeroPostgres) Create(ctx context.Context, in model.HeroInput) (*model.Hero, error) {
	const q = `INSERT INTO heroes (name) VALUES ($1) RETURNING id, name`
	return r.queryRow(ctx, q, in.Name)
}

// Update replaces the name of an existing hero. It returns sql.ErrNoRows if the hero does not exist.
func (r *HeroPostgres) Update(ctx context.Context, h model.Hero) (*model.Hero, error) {
	const q = `UPDATE heroes SET name = $2 WHERE id = $1 RETURNING id, name`
	return r.queryRow(ctx, q, h.ID, h.Name)
}

// Delete removes a hero by ID and returns the removed row, or sql.ErrNoRows.
func (r *HeroPostgres) Delete(ctx context.Context, id int) (*model.Hero, error) {
	const q = `DELETE FROM heroes WHERE id = $1 RETURNING id, name`
	return r.queryRow(ctx, q, id)
}

// Ping verifies the database connection.
func (r *HeroPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *HeroPostgres) queryRow(ctx context.Context, q string, args ...any) (*model.Hero, error) {
	var h model.Hero
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&h.ID, &h.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &h, nil
}

func (r *HeroPostgres) query(ctx context.Context, q string, args ...any) ([]model.Hero, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Hero, 0)
	for rows.Next() {
		var h model.Hero
		if err := rows.Scan(&h.ID, &h.Name); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// escapeLike escapes LIKE wildcards so the term is matched literally.
func escapeLike(term string) string {
	out := make([]rune, 0, len(term))
	for _, c := range term {
		switch c {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
