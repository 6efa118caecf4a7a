// Package testutil provides shared test helpers for stores and fake backends.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mmcdole/explorador/internal/images"
	"github.com/mmcdole/explorador/internal/store"
)

// TestStore opens a preference store in a temporary directory that is closed on cleanup.
func TestStore(t *testing.T) (*store.PreferenceStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preferences.db")
	s, err := store.Open(path, store.DefaultNamespace, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

// SearchFunc answers one image search query
type SearchFunc func(ctx context.Context, query string) ([]images.PageImage, error)

// FakeSearcher is an images.Searcher that records every query it receives.
type FakeSearcher struct {
	mu      sync.Mutex
	fn      SearchFunc
	queries []string
}

// NewFakeSearcher returns a searcher answering with fn
func NewFakeSearcher(fn SearchFunc) *FakeSearcher {
	return &FakeSearcher{fn: fn}
}

// Search records query and delegates to the configured function
func (f *FakeSearcher) Search(ctx context.Context, query string) ([]images.PageImage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(ctx, query)
}

// Calls returns the number of queries received
func (f *FakeSearcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// Queries returns a copy of the queries received, in order
func (f *FakeSearcher) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queries))
	copy(out, f.queries)
	return out
}
