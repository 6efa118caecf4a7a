// Package personal manages the user's notes, favorites and display settings.
// Every mutation is a load-modify-save against the preference store.
package personal

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/mmcdole/explorador/internal/domain"
)

// NoteInput is the note form payload. An empty ID creates a new note.
type NoteInput struct {
	ID    string
	Title string
	Text  string
}

func (in *NoteInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Text = strings.TrimSpace(in.Text)
}

// Validate requires a non-blank title and text
func (in NoteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Text, validation.Required),
	)
}

// Service provides personalization operations over a PreferenceStore
type Service struct {
	store  domain.PreferenceStore
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewService creates a personalization service
func NewService(store domain.PreferenceStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// update runs fn against freshly loaded preferences and saves the result
func (s *Service) update(fn func(p *domain.Preferences) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.store.Load()
	if err := fn(&prefs); err != nil {
		return err
	}
	if err := s.store.Save(prefs); err != nil {
		s.logger.Error("failed to save preferences", "error", err)
		return err
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
}

// === Notes ===

// Notes returns the notes of a department in insertion order
func (s *Service) Notes(depID int) []domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.store.Load().Notes[depID])
}

// SaveNote creates a note or updates an existing one, stamping the current time.
func (s *Service) SaveNote(depID int, in NoteInput) (domain.Note, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return domain.Note{}, invalid(err)
	}

	var saved domain.Note
	err := s.update(func(p *domain.Preferences) error {
		notes := p.Notes[depID]
		if in.ID == "" {
			saved = domain.Note{ID: uuid.NewString(), Title: in.Title, Text: in.Text, Date: s.now()}
			p.Notes[depID] = append(notes, saved)
			return nil
		}

		i := slices.IndexFunc(notes, func(n domain.Note) bool { return n.ID == in.ID })
		if i < 0 {
			return fmt.Errorf("note %s: %w", in.ID, domain.ErrNoteNotFound)
		}
		notes[i].Title = in.Title
		notes[i].Text = in.Text
		notes[i].Date = s.now()
		saved = notes[i]
		return nil
	})
	return saved, err
}

// DeleteNote removes a note by id
func (s *Service) DeleteNote(depID int, noteID string) error {
	return s.update(func(p *domain.Preferences) error {
		notes := p.Notes[depID]
		i := slices.IndexFunc(notes, func(n domain.Note) bool { return n.ID == noteID })
		if i < 0 {
			return fmt.Errorf("note %s: %w", noteID, domain.ErrNoteNotFound)
		}
		p.Notes[depID] = slices.Delete(notes, i, i+1)
		return nil
	})
}

// === Municipality favorites ===

// MunicipalityFavorites returns the pinned municipalities of a department
func (s *Service) MunicipalityFavorites(depID int) []domain.MunicipalityFavorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.store.Load().MunicipalityFavorites[depID])
}

func validateName(name string) error {
	return validation.Validate(name, validation.Required.Error("name cannot be blank"))
}

// AddMunicipalityFavorite pins a municipality name under a department
func (s *Service) AddMunicipalityFavorite(depID int, name string) (domain.MunicipalityFavorite, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return domain.MunicipalityFavorite{}, invalid(err)
	}

	fav := domain.MunicipalityFavorite{ID: uuid.NewString(), Name: name}
	err := s.update(func(p *domain.Preferences) error {
		p.MunicipalityFavorites[depID] = append(p.MunicipalityFavorites[depID], fav)
		return nil
	})
	return fav, err
}

// RenameMunicipalityFavorite replaces the name of a pinned municipality
func (s *Service) RenameMunicipalityFavorite(depID int, favID, name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return invalid(err)
	}
	return s.update(func(p *domain.Preferences) error {
		favs := p.MunicipalityFavorites[depID]
		i := slices.IndexFunc(favs, func(f domain.MunicipalityFavorite) bool { return f.ID == favID })
		if i < 0 {
			return fmt.Errorf("favorite %s: %w", favID, domain.ErrFavoriteNotFound)
		}
		favs[i].Name = name
		return nil
	})
}

// RemoveMunicipalityFavorite unpins a municipality by id
func (s *Service) RemoveMunicipalityFavorite(depID int, favID string) error {
	return s.update(func(p *domain.Preferences) error {
		favs := p.MunicipalityFavorites[depID]
		i := slices.IndexFunc(favs, func(f domain.MunicipalityFavorite) bool { return f.ID == favID })
		if i < 0 {
			return fmt.Errorf("favorite %s: %w", favID, domain.ErrFavoriteNotFound)
		}
		p.MunicipalityFavorites[depID] = slices.Delete(favs, i, i+1)
		return nil
	})
}

// === Department favorites ===

// DepartmentFavorites returns the favorite department ids
func (s *Service) DepartmentFavorites() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.store.Load().DepartmentFavorites)
}

// IsDepartmentFavorite reports whether a department is marked favorite
func (s *Service) IsDepartmentFavorite(id int) bool {
	return slices.Contains(s.DepartmentFavorites(), id)
}

// ToggleDepartmentFavorite flips membership and returns the new state
func (s *Service) ToggleDepartmentFavorite(id int) (bool, error) {
	var member bool
	err := s.update(func(p *domain.Preferences) error {
		if i := slices.Index(p.DepartmentFavorites, id); i >= 0 {
			p.DepartmentFavorites = slices.Delete(p.DepartmentFavorites, i, i+1)
			member = false
		} else {
			p.DepartmentFavorites = append(p.DepartmentFavorites, id)
			member = true
		}
		return nil
	})
	return member, err
}

// === Settings ===

func (s *Service) ThumbnailsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load().Settings.ThumbsOn
}

func (s *Service) SetThumbnailsEnabled(on bool) error {
	return s.update(func(p *domain.Preferences) error {
		p.Settings.ThumbsOn = on
		return nil
	})
}
