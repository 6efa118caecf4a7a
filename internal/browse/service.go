// Package browse holds the list and detail presentation logic: loading
// departments, filtering and sorting them, and assembling a detail view.
package browse

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mmcdole/explorador/internal/domain"
)

// View selects which departments the list shows
type View string

const (
	ViewAll       View = "all"
	ViewFavorites View = "favorites"
)

// SortOrder orders the list by name
type SortOrder string

const (
	SortNameAsc  SortOrder = "name-asc"
	SortNameDesc SortOrder = "name-desc"
)

// ParseSortOrder maps a config value to a SortOrder, defaulting to ascending
func ParseSortOrder(s string) SortOrder {
	if SortOrder(strings.ToLower(strings.TrimSpace(s))) == SortNameDesc {
		return SortNameDesc
	}
	return SortNameAsc
}

// ListParams are the list controls
type ListParams struct {
	View      View
	Query     string
	Sort      SortOrder
	Favorites []int // favorite department ids, used by ViewFavorites
}

// Detail is everything the detail panel renders for one department
type Detail struct {
	Department domain.Department
	Cities     []domain.City
	ImageURL   string
}

// Service loads catalog data for the presenter
type Service struct {
	catalog  domain.CatalogRepository
	resolver domain.ImageResolver
	logger   *slog.Logger
}

// NewService creates a browse service
func NewService(catalog domain.CatalogRepository, resolver domain.ImageResolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, resolver: resolver, logger: logger}
}

// LoadDepartments fetches the department list. Nothing is cached between calls.
func (s *Service) LoadDepartments(ctx context.Context) ([]domain.Department, error) {
	deps, err := s.catalog.ListDepartments(ctx)
	if err != nil {
		s.logger.Error("failed to load departments", "error", err)
		return nil, err
	}
	s.logger.Debug("loaded departments", "count", len(deps))
	return deps, nil
}

// LoadDetail fetches a department, then its cities and image concurrently.
// Any catalog failure fails the whole detail; the image never does.
func (s *Service) LoadDetail(ctx context.Context, id int) (*Detail, error) {
	dep, err := s.catalog.GetDepartment(ctx, id)
	if err != nil {
		s.logger.Error("failed to load department", "id", id, "error", err)
		return nil, err
	}

	detail := &Detail{Department: *dep}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cities, err := s.catalog.ListCities(gCtx, id)
		if err != nil {
			return fmt.Errorf("cities of %d: %w", id, err)
		}
		detail.Cities = cities
		return nil
	})
	g.Go(func() error {
		detail.ImageURL = s.resolver.Resolve(gCtx, dep.Name)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load department detail", "id", id, "error", err)
		return nil, err
	}
	return detail, nil
}

// Filter applies view, query and sort to deps, returning a new slice.
// The query matches a case-insensitive substring of the name, ignoring accents.
func Filter(deps []domain.Department, p ListParams) []domain.Department {
	out := make([]domain.Department, 0, len(deps))

	var favs map[int]bool
	if p.View == ViewFavorites {
		favs = make(map[int]bool, len(p.Favorites))
		for _, id := range p.Favorites {
			favs[id] = true
		}
	}

	q := strings.ToLower(strings.TrimSpace(p.Query))
	fq := fold(q)
	for _, d := range deps {
		if favs != nil && !favs[d.ID] {
			continue
		}
		if q != "" {
			name := strings.ToLower(d.Name)
			if !strings.Contains(name, q) && !strings.Contains(fold(name), fq) {
				continue
			}
		}
		out = append(out, d)
	}

	SortByName(out, p.Sort)
	return out
}

// SortByName sorts in place using Spanish collation
func SortByName(deps []domain.Department, order SortOrder) {
	c := collate.New(language.Spanish)
	slices.SortStableFunc(deps, func(a, b domain.Department) int {
		if order == SortNameDesc {
			return c.CompareString(b.Name, a.Name)
		}
		return c.CompareString(a.Name, b.Name)
	})
}

// Suggest returns up to limit department names close to query, best first.
// Used when a query matches nothing.
func Suggest(deps []domain.Department, query string, limit int) []string {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil
	}

	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		// No subsequence match; fall back to edit distance
		for _, n := range names {
			dist := fuzzy.LevenshteinDistance(fold(strings.ToLower(query)), fold(strings.ToLower(n)))
			if dist <= len(query)/2+1 {
				ranks = append(ranks, fuzzy.Rank{Source: query, Target: n, Distance: dist})
			}
		}
	}
	sort.Sort(ranks)

	out := make([]string, 0, limit)
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

// fold strips combining marks so "bogota" matches "Bogotá"
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
