package reveal

import (
	"sort"
	"sync"
)

// Viewport is a VisibilitySource for a vertically scrolling list of rows.
// The proximity zone spans the visible rows plus margin rows above and below.
type Viewport struct {
	mu       sync.Mutex
	margin   int
	rows     map[string]int // id -> row index
	tracked  map[string]bool
	inside   map[string]bool
	offset   int
	height   int
	handlers []func(id string)
}

// NewViewport creates a viewport with the given proximity margin in rows
func NewViewport(margin int) *Viewport {
	if margin < 0 {
		margin = 0
	}
	return &Viewport{
		margin:  margin,
		rows:    make(map[string]int),
		tracked: make(map[string]bool),
		inside:  make(map[string]bool),
	}
}

// SetRows assigns row positions in display order
func (v *Viewport) SetRows(ids []string) {
	v.mu.Lock()
	v.rows = make(map[string]int, len(ids))
	for i, id := range ids {
		v.rows[id] = i
	}
	entered := v.recompute()
	handlers := v.handlers
	v.mu.Unlock()

	notify(handlers, entered)
}

// OnEnter registers a callback for items entering the zone
func (v *Viewport) OnEnter(fn func(id string)) {
	v.mu.Lock()
	v.handlers = append(v.handlers, fn)
	v.mu.Unlock()
}

// Track starts watching id, reporting it at once if already in the zone
func (v *Viewport) Track(id string) {
	v.mu.Lock()
	v.tracked[id] = true
	var entered []string
	if v.inZone(id) {
		v.inside[id] = true
		entered = []string{id}
	}
	handlers := v.handlers
	v.mu.Unlock()

	notify(handlers, entered)
}

// Untrack stops watching id
func (v *Viewport) Untrack(id string) {
	v.mu.Lock()
	delete(v.tracked, id)
	delete(v.inside, id)
	v.mu.Unlock()
}

// Tracked reports whether id is still watched
func (v *Viewport) Tracked(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tracked[id]
}

// Scroll moves the visible window and reports tracked rows that entered the zone
func (v *Viewport) Scroll(offset, height int) {
	v.mu.Lock()
	v.offset = offset
	v.height = height
	entered := v.recompute()
	handlers := v.handlers
	v.mu.Unlock()

	notify(handlers, entered)
}

// recompute refreshes zone membership; callers hold mu
func (v *Viewport) recompute() []string {
	var entered []string
	for id := range v.tracked {
		in := v.inZone(id)
		if in && !v.inside[id] {
			entered = append(entered, id)
		}
		if in {
			v.inside[id] = true
		} else {
			delete(v.inside, id)
		}
	}
	sort.Slice(entered, func(i, j int) bool { return v.rows[entered[i]] < v.rows[entered[j]] })
	return entered
}

func (v *Viewport) inZone(id string) bool {
	if v.height <= 0 {
		return false
	}
	row, ok := v.rows[id]
	if !ok {
		return false
	}
	return row >= v.offset-v.margin && row < v.offset+v.height+v.margin
}

func notify(handlers []func(string), ids []string) {
	for _, id := range ids {
		for _, fn := range handlers {
			fn(id)
		}
	}
}
