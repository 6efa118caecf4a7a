package images

import (
	"context"
	"log/slog"
	"strings"
)

// Placeholder is the generic blank map returned when no lookup succeeds
const Placeholder = "https://upload.wikimedia.org/wikipedia/commons/2/21/Colombia_departments_blank_map.svg"

// match is the outcome of one search attempt: found with a URL, or not found.
// err records a suppressed failure so the caller can tell "no result" from "broken".
type match struct {
	url string
	err error
}

func (m match) found() bool { return m.url != "" }

// Resolver implements domain.ImageResolver with a memoized fallback chain
type Resolver struct {
	searcher         Searcher
	cache            *Cache
	strategies       []Strategy
	placeholder      string
	cachePlaceholder bool
	logger           *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache shares an existing memo cache
func WithCache(c *Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithPlaceholder overrides the fallback URL
func WithPlaceholder(url string) Option {
	return func(r *Resolver) {
		if url != "" {
			r.placeholder = url
		}
	}
}

// WithCachePlaceholder controls whether an exhausted lookup memoizes the placeholder.
// When false the next Resolve for the name queries the backend again.
func WithCachePlaceholder(keep bool) Option {
	return func(r *Resolver) { r.cachePlaceholder = keep }
}

// WithStrategies replaces the query phrasings
func WithStrategies(s []Strategy) Option {
	return func(r *Resolver) {
		if len(s) > 0 {
			r.strategies = s
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver over searcher
func NewResolver(searcher Searcher, opts ...Option) *Resolver {
	r := &Resolver{
		searcher:         searcher,
		strategies:       DefaultStrategies,
		placeholder:      Placeholder,
		cachePlaceholder: true,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewCache()
	}
	return r
}

// Cache returns the resolver's memo cache
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Placeholder returns the configured fallback URL
func (r *Resolver) Placeholder() string {
	return r.placeholder
}

// Resolve returns an image URL for the department name. It never fails; when
// ctx ends first the placeholder is returned and nothing is memoized.
func (r *Resolver) Resolve(ctx context.Context, name string) string {
	if strings.TrimSpace(name) == "" {
		return r.placeholder
	}

	// The shared lookup outlives any single caller's cancellation
	lookupCtx := context.WithoutCancel(ctx)

	url, err := r.cache.Do(ctx, name, func() (string, bool) {
		m := r.lookup(lookupCtx, name)
		if m.found() {
			return m.url, true
		}
		r.logger.Debug("no image found, using placeholder", "name", name, "lastError", m.err)
		return r.placeholder, r.cachePlaceholder
	})
	if err != nil {
		r.logger.Debug("image resolution abandoned", "name", name, "error", err)
		return r.placeholder
	}
	return url
}

// lookup folds the strategies left to right, stopping at the first found match
func (r *Resolver) lookup(ctx context.Context, name string) match {
	var last match
	for _, query := range buildQueries(r.strategies, name) {
		if last = r.attempt(ctx, query); last.found() {
			return last
		}
	}
	return last
}

// attempt runs one search; every failure is suppressed into a not-found match
func (r *Resolver) attempt(ctx context.Context, query string) match {
	pages, err := r.searcher.Search(ctx, query)
	if err != nil {
		r.logger.Debug("image search variant failed", "query", query, "error", err)
		return match{err: err}
	}
	if len(pages) == 0 {
		return match{}
	}
	top := pages[0]
	if top.Thumbnail != "" {
		return match{url: top.Thumbnail}
	}
	return match{url: top.Original}
}
