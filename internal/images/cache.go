package images

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes resolved image URLs by department name for the process lifetime.
// At most one lookup per name is in flight; concurrent callers share its result.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
	group   singleflight.Group
}

// NewCache creates an empty memo cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the memoized URL for name
func (c *Cache) Get(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.entries[name]
	return url, ok
}

// Len returns the number of memoized names
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) set(name, url string) {
	c.mu.Lock()
	c.entries[name] = url
	c.mu.Unlock()
}

// Do returns the memoized URL for name, or runs lookup exactly once among all
// concurrent callers. The result is stored only when lookup reports keep.
// If ctx ends before the shared lookup finishes, Do returns ("", ctx.Err())
// while the lookup keeps running for the remaining callers.
func (c *Cache) Do(ctx context.Context, name string, lookup func() (url string, keep bool)) (string, error) {
	if url, ok := c.Get(name); ok {
		return url, nil
	}

	ch := c.group.DoChan(name, func() (any, error) {
		// A caller may have finished between our Get and joining the group
		if url, ok := c.Get(name); ok {
			return url, nil
		}
		url, keep := lookup()
		if keep {
			c.set(name, url)
		}
		return url, nil
	})

	select {
	case res := <-ch:
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
