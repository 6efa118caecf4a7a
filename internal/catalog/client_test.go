package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/explorador/internal/domain"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListDepartments_Normalizes(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/Department": `[
			{"id": 5, "name": "Antioquia", "description": "Montañoso"},
			{"id": "11", "name": "Chocó", "description": null},
			{"id": 3, "name": "Atlántico"}
		]`,
	})
	c := NewClient(srv.URL, time.Second, nil)

	deps, err := c.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, deps, 3)

	assert.Equal(t, 5, deps[0].ID)
	assert.Equal(t, "Montañoso", deps[0].Description)
	assert.Equal(t, 11, deps[1].ID)
	assert.Equal(t, "", deps[1].Description)
	assert.Equal(t, "", deps[2].Description)
}

func TestGetDepartment_CapitalForms(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/Department/2": `{"id": 2, "name": "Antioquia", "cityCapital": {"name": "Medellín"}, "population": 6407102, "surface": 63612}`,
		"/Department/7": `{"id": 7, "name": "Boyacá", "cityCapital": "Tunja"}`,
	})
	c := NewClient(srv.URL, time.Second, nil)

	dep, err := c.GetDepartment(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Medellín", dep.CityCapital)
	assert.EqualValues(t, 6407102, dep.Population)
	assert.InDelta(t, 63612, dep.Surface, 0.001)

	dep, err = c.GetDepartment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Tunja", dep.CityCapital)
}

func TestGetDepartment_NotFoundIsTyped(t *testing.T) {
	srv := newTestServer(t, map[string]string{})
	c := NewClient(srv.URL, time.Second, nil)

	_, err := c.GetDepartment(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDepartmentNotFound))

	var httpErr *domain.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, srv.URL+"/Department/99", httpErr.URL)
}

func TestListCities_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second, nil)

	_, err := c.ListCities(context.Background(), 4)
	var httpErr *domain.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Contains(t, httpErr.URL, "/Department/4/cities")
}

func TestListCities_FillsDepartment(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/Department/4/cities": `[{"id": 10, "name": "Leticia", "postalCode": "910001"}, {"id": 11, "name": "Puerto Nariño", "departmentId": 4}]`,
	})
	c := NewClient(srv.URL, time.Second, nil)

	cities, err := c.ListCities(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Leticia", cities[0].Name)
	assert.Equal(t, 4, cities[0].DepartmentID)
	assert.Equal(t, "910001", cities[0].PostalCode)
}

func TestOfflineIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil)
	_, err := c.ListDepartments(context.Background())
	assert.True(t, errors.Is(err, domain.ErrCatalogOffline))
}
