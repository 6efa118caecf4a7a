package browse_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/mmcdole/explorador/internal/browse"
	"github.com/mmcdole/explorador/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	deps      []domain.Department
	cities    map[int][]domain.City
	listErr   error
	citiesErr error
	listCalls atomic.Int32
}

func (f *fakeCatalog) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	f.listCalls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Department(nil), f.deps...), nil
}

func (f *fakeCatalog) GetDepartment(ctx context.Context, id int) (*domain.Department, error) {
	for _, d := range f.deps {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, &domain.HTTPError{Status: 404, URL: "/Department"}
}

func (f *fakeCatalog) ListCities(ctx context.Context, id int) ([]domain.City, error) {
	if f.citiesErr != nil {
		return nil, f.citiesErr
	}
	return f.cities[id], nil
}

type staticResolver struct{ names []string }

func (r *staticResolver) Resolve(ctx context.Context, name string) string {
	r.names = append(r.names, name)
	return "https://img/" + name
}

func departments() []domain.Department {
	return []domain.Department{
		{ID: 1, Name: "Boyacá"},
		{ID: 2, Name: "Bolívar"},
		{ID: 3, Name: "Antioquia"},
		{ID: 4, Name: "Atlántico"},
		{ID: 5, Name: "Cauca"},
		{ID: 6, Name: "Valle del Cauca"},
	}
}

func names(deps []domain.Department) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.Name
	}
	return out
}

func TestLoadDepartments_AlwaysFetches(t *testing.T) {
	cat := &fakeCatalog{deps: departments()}
	svc := browse.NewService(cat, &staticResolver{}, nil)

	for i := 0; i < 2; i++ {
		deps, err := svc.LoadDepartments(context.Background())
		require.NoError(t, err)
		assert.Len(t, deps, 6)
	}
	assert.EqualValues(t, 2, cat.listCalls.Load())
}

func TestLoadDepartments_PropagatesFailure(t *testing.T) {
	cat := &fakeCatalog{listErr: domain.ErrCatalogOffline}
	svc := browse.NewService(cat, &staticResolver{}, nil)

	_, err := svc.LoadDepartments(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogOffline)
}

func TestLoadDetail(t *testing.T) {
	cat := &fakeCatalog{
		deps:   departments(),
		cities: map[int][]domain.City{5: {{ID: 10, DepartmentID: 5, Name: "Popayán"}}},
	}
	res := &staticResolver{}
	svc := browse.NewService(cat, res, nil)

	detail, err := svc.LoadDetail(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Cauca", detail.Department.Name)
	assert.Equal(t, []string{"Popayán"}, []string{detail.Cities[0].Name})
	assert.Equal(t, "https://img/Cauca", detail.ImageURL)
	assert.Equal(t, []string{"Cauca"}, res.names)
}

func TestLoadDetail_MissingDepartment(t *testing.T) {
	svc := browse.NewService(&fakeCatalog{deps: departments()}, &staticResolver{}, nil)

	_, err := svc.LoadDetail(context.Background(), 99)
	var httpErr *domain.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 404, httpErr.Status)
}

func TestLoadDetail_CitiesFailureFailsDetail(t *testing.T) {
	cat := &fakeCatalog{deps: departments(), citiesErr: &domain.HTTPError{Status: 500, URL: "/cities"}}
	svc := browse.NewService(cat, &staticResolver{}, nil)

	detail, err := svc.LoadDetail(context.Background(), 5)
	assert.Nil(t, detail)
	var httpErr *domain.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 500, httpErr.Status)
}

func TestFilter_SortOrders(t *testing.T) {
	asc := browse.Filter(departments(), browse.ListParams{Sort: browse.SortNameAsc})
	assert.Equal(t, []string{"Antioquia", "Atlántico", "Bolívar", "Boyacá", "Cauca", "Valle del Cauca"}, names(asc))

	desc := browse.Filter(departments(), browse.ListParams{Sort: browse.SortNameDesc})
	assert.Equal(t, []string{"Valle del Cauca", "Cauca", "Boyacá", "Bolívar", "Atlántico", "Antioquia"}, names(desc))
}

func TestFilter_SpanishCollation(t *testing.T) {
	deps := []domain.Department{{Name: "Oriente"}, {Name: "Ñame"}, {Name: "Nuevo"}, {Name: "Ábaco"}, {Name: "Boyacá"}}
	assert.Equal(t, []string{"Ábaco", "Boyacá", "Nuevo", "Ñame", "Oriente"}, names(browse.Filter(deps, browse.ListParams{})))
}

func TestFilter_Query(t *testing.T) {
	got := browse.Filter(departments(), browse.ListParams{Query: "  CAUCA "})
	assert.Equal(t, []string{"Cauca", "Valle del Cauca"}, names(got))

	got = browse.Filter(departments(), browse.ListParams{Query: "atlantico"})
	assert.Equal(t, []string{"Atlántico"}, names(got))

	assert.Empty(t, browse.Filter(departments(), browse.ListParams{Query: "zzz"}))
}

func TestFilter_FavoritesView(t *testing.T) {
	p := browse.ListParams{View: browse.ViewFavorites, Favorites: []int{2, 6}}
	assert.Equal(t, []string{"Bolívar", "Valle del Cauca"}, names(browse.Filter(departments(), p)))

	p.Query = "valle"
	assert.Equal(t, []string{"Valle del Cauca"}, names(browse.Filter(departments(), p)))

	p = browse.ListParams{View: browse.ViewFavorites}
	assert.Empty(t, browse.Filter(departments(), p))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	deps := departments()
	browse.Filter(deps, browse.ListParams{Sort: browse.SortNameDesc})
	assert.Equal(t, departments(), deps)
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, []string{"Boyacá"}, browse.Suggest(departments(), "byc", 3))
	assert.Contains(t, browse.Suggest(departments(), "Bolivr", 3), "Bolívar")
	assert.Nil(t, browse.Suggest(departments(), " ", 3))
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, browse.SortNameDesc, browse.ParseSortOrder("NAME-DESC"))
	assert.Equal(t, browse.SortNameAsc, browse.ParseSortOrder("bogus"))
}
