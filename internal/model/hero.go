package model

// Hero is the single record type served by the heroes backend.
// The ID is assigned by the backend on create and never changes afterwards.
type Hero struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// HeroInput is the payload for creating a hero; the backend assigns the ID.
type HeroInput struct {
	Name string `json:"name"`
}

// HeroID is a bare hero identifier.
type HeroID int

// HeroRef is anything that identifies a stored hero: a full Hero or a bare HeroID.
type HeroRef interface {
	HeroRefID() int
}

// HeroRefID implements HeroRef.
func (h Hero) HeroRefID() int { return h.ID }

// HeroRefID implements HeroRef.
func (id HeroID) HeroRefID() int { return int(id) }

// SeedHeroes returns the tutorial roster the backend starts with.
func SeedHeroes() []Hero {
	return []Hero{
		{ID: 11, Name: "Dr Nice"},
		{ID: 12, Name: "Narco"},
		{ID: 13, Name: "Bombasto"},
		{ID: 14, Name: "Celeritas"},
		{ID: 15, Name: "Magneta"},
		{ID: 16, Name: "RubberMan"},
		{ID: 17, Name: "Dynama"},
		{ID: 18, Name: "Dr IQ"},
		{ID: 19, Name: "Magma"},
		{ID: 20, Name: "Tornado"},
	}
}
