package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Department is a top-level administrative region from the remote catalog.
type Department struct {
	ID          int    // Remote-assigned identifier
	Name        string // Display name, also the image lookup key
	Description string // May be empty

	// Detail-only fields (zero when loaded from the list endpoint)
	CityCapital string  // Capital city name
	Population  int64   // Inhabitants
	Surface     float64 // Area in km²
}

// DisplayDescription returns the description or a fallback when it is blank
func (d Department) DisplayDescription() string {
	if strings.TrimSpace(d.Description) == "" {
		return "Sin descripción disponible."
	}
	return d.Description
}

// City is a municipality belonging to exactly one department
type City struct {
	ID           int
	DepartmentID int
	Name         string
	Description  string
	Population   int64
	PostalCode   string
}

// Note is a user note attached to a department
type Note struct {
	ID    string    `json:"id"`
	Title string    `json:"titulo"`
	Text  string    `json:"texto"`
	Date  time.Time `json:"fecha"`
}

// MunicipalityFavorite is a free-text municipality name pinned under a department.
// ID is stable across edits and deletions of sibling entries.
type MunicipalityFavorite struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts both the object form and the legacy plain-string form,
// assigning a fresh identity to legacy entries.
func (f *MunicipalityFavorite) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		f.ID = uuid.NewString()
		f.Name = name
		return nil
	}

	type plain MunicipalityFavorite
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	*f = MunicipalityFavorite(p)
	return nil
}

// Settings holds global display preferences
type Settings struct {
	ThumbsOn bool `json:"thumbsOn"`
}

// Preferences is the single persisted root object.
// All four top-level fields are always present after Normalize.
type Preferences struct {
	Notes                 map[int][]Note                 `json:"notas"`
	MunicipalityFavorites map[int][]MunicipalityFavorite `json:"munFavs"`
	DepartmentFavorites   []int                          `json:"deptFavs"`
	Settings              Settings                       `json:"settings"`
}

// DefaultPreferences returns the empty root shape
func DefaultPreferences() Preferences {
	return Preferences{
		Notes:                 make(map[int][]Note),
		MunicipalityFavorites: make(map[int][]MunicipalityFavorite),
		DepartmentFavorites:   []int{},
		Settings:              Settings{ThumbsOn: false},
	}
}

// Normalize fills any missing top-level field with its empty default
func (p *Preferences) Normalize() {
	if p.Notes == nil {
		p.Notes = make(map[int][]Note)
	}
	if p.MunicipalityFavorites == nil {
		p.MunicipalityFavorites = make(map[int][]MunicipalityFavorite)
	}
	if p.DepartmentFavorites == nil {
		p.DepartmentFavorites = []int{}
	}
}
