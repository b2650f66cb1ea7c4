package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"heroes/internal/model"
	"heroes/internal/repository"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNameRequired = errors.New("name is required")
	ErrNotFound     = errors.New("hero not found")
)

// HeroService defines the use cases behind the heroes REST contract.
type HeroService interface {
	// List returns every hero ordered by ID.
	List(ctx context.Context) ([]model.Hero, error)

	// Search returns heroes whose name contains term. A blank term behaves like List.
	Search(ctx context.Context, term string) ([]model.Hero, error)

	// Get returns a single hero by its ID.
	Get(ctx context.Context, id int) (*model.Hero, error)

	// Create stores a new hero; the ID is assigned by the repository.
	Create(ctx context.Context, in model.HeroInput) (*model.Hero, error)

	// Update replaces the hero with h.ID.
	Update(ctx context.Context, h model.Hero) (*model.Hero, error)

	// Delete removes a hero and returns the removed record.
	Delete(ctx context.Context, id int) (*model.Hero, error)

	// Ping checks the backing store.
	Ping(ctx context.Context) error
}

// heroService is a concrete implementation of HeroService.
type heroService struct {
	repo repository.HeroRepository
}

// NewHeroService constructs a new HeroService.
func NewHeroService(repo repository.HeroRepository) HeroService {
	return &heroService{repo: repo}
}

func (s *heroService) List(ctx context.Context) ([]model.Hero, error) {
	return s.repo.List(ctx)
}

func (s *heroService) Search(ctx context.Context, term string) ([]model.Hero, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, term)
}

func (s *heroService) Get(ctx context.Context, id int) (*model.Hero, error) {
	if id <= 0 {
		return nil, ErrIDRequired
	}
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return h, nil
}

func (s *heroService) Create(ctx context.Context, in model.HeroInput) (*model.Hero, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	h, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create hero: %w", err)
	}
	return h, nil
}

func (s *heroService) Update(ctx context.Context, h model.Hero) (*model.Hero, error) {
	if h.ID <= 0 {
		return nil, ErrIDRequired
	}
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return nil, ErrNameRequired
	}
	stored, err := s.repo.Update(ctx, h)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return stored, nil
}

func (s *heroService) Delete(ctx context.Context, id int) (*model.Hero, error) {
	if id <= 0 {
		return nil, ErrIDRequired
	}
	h, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return h, nil
}

func (s *heroService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
