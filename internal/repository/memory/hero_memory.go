package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"heroes/internal/model"
	"heroes/internal/repository"
)

// firstID is assigned to the first hero created in an empty store.
const firstID = 11

// HeroMemory is an in-process implementation of repository.HeroRepository.
// IDs are assigned as one more than the highest stored ID.
type HeroMemory struct {
	mu     sync.RWMutex
	heroes map[int]model.Hero
}

// NewHeroMemory creates a store holding seed.
func NewHeroMemory(seed []model.Hero) *HeroMemory {
	m := &HeroMemory{heroes: make(map[int]model.Hero, len(seed))}
	for _, h := range seed {
		m.heroes[h.ID] = h
	}
	return m
}

var _ repository.HeroRepository = (*HeroMemory)(nil)

// List returns every hero ordered by ID.
func (m *HeroMemory) List(ctx context.Context) ([]model.Hero, error) {
	return m.filter(ctx, func(model.Hero) bool { return true })
}

// Search returns heroes whose name contains term, ignoring case.
func (m *HeroMemory) Search(ctx context.Context, term string) ([]model.Hero, error) {
	needle := strings.ToLower(term)
	return m.filter(ctx, func(h model.Hero) bool {
		return strings.Contains(strings.ToLower(h.Name), needle)
	})
}

// FindByID returns the hero with the given ID or sql.ErrNoRows.
func (m *HeroMemory) FindByID(ctx context.Context, id int) (*model.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.heroes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &h, nil
}

// Create stores a new hero under the next free ID.
func (m *HeroMemory) Create(ctx context.Context, in model.HeroInput) (*model.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	h := model.Hero{ID: m.nextID(), Name: in.Name}
	m.heroes[h.ID] = h
	return &h, nil
}

// Update replaces the hero with h.ID or returns sql.ErrNoRows.
func (m *HeroMemory) Update(ctx context.Context, h model.Hero) (*model.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.heroes[h.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	m.heroes[h.ID] = h
	return &h, nil
}

// Delete removes the hero with the given ID or returns sql.ErrNoRows.
func (m *HeroMemory) Delete(ctx context.Context, id int) (*model.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.heroes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(m.heroes, id)
	return &h, nil
}

// Ping always succeeds for the in-memory store.
func (m *HeroMemory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *HeroMemory) filter(ctx context.Context, keep func(model.Hero) bool) ([]model.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]model.Hero, 0, len(m.heroes))
	for _, h := range m.heroes {
		if keep(h) {
			items = append(items, h)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// nextID must be called with mu held.
func (m *HeroMemory) nextID() int {
	if len(m.heroes) == 0 {
		return firstID
	}
	highest := 0
	for id := range m.heroes {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}
