package reveal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualSource is a VisibilitySource driven directly by tests
type manualSource struct {
	mu       sync.Mutex
	tracked  map[string]bool
	handlers []func(string)
}

func newManualSource() *manualSource {
	return &manualSource{tracked: make(map[string]bool)}
}

func (s *manualSource) Track(id string) {
	s.mu.Lock()
	s.tracked[id] = true
	s.mu.Unlock()
}

func (s *manualSource) Untrack(id string) {
	s.mu.Lock()
	delete(s.tracked, id)
	s.mu.Unlock()
}

func (s *manualSource) OnEnter(fn func(string)) {
	s.handlers = append(s.handlers, fn)
}

func (s *manualSource) enter(id string) {
	for _, fn := range s.handlers {
		fn(id)
	}
}

func (s *manualSource) isTracked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracked[id]
}

type countingResolver struct {
	mu    sync.Mutex
	calls map[string]int
	block chan struct{}
	panic bool
}

func newCountingResolver() *countingResolver {
	return &countingResolver{calls: make(map[string]int)}
}

func (r *countingResolver) Resolve(ctx context.Context, name string) string {
	r.mu.Lock()
	r.calls[name]++
	r.mu.Unlock()
	if r.block != nil {
		<-r.block
	}
	if r.panic {
		panic("lookup exploded")
	}
	return "https://img/" + name
}

func (r *countingResolver) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) add(r Result) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
}

func (c *collector) all() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.results...)
}

func TestTrigger_LoadsOnFirstEntry(t *testing.T) {
	src := newManualSource()
	res := newCountingResolver()
	var got collector
	tr := NewTrigger(context.Background(), src, res, got.add)

	tr.Observe(Slot{ID: "s1", Name: "Cauca"})
	assert.Equal(t, StateObserved, tr.State("s1"))
	assert.True(t, src.isTracked("s1"))

	src.enter("s1")
	tr.Wait()

	assert.Equal(t, StateLoaded, tr.State("s1"))
	assert.False(t, src.isTracked("s1"))
	assert.Equal(t, []Result{{SlotID: "s1", Name: "Cauca", URL: "https://img/Cauca"}}, got.all())
}

func TestTrigger_LoadedSlotNeverResolves(t *testing.T) {
	src := newManualSource()
	res := newCountingResolver()
	tr := NewTrigger(context.Background(), src, res, nil)

	tr.Observe(Slot{ID: "s1", Name: "Cauca", Loaded: true})
	src.enter("s1")
	src.enter("s1")
	tr.Wait()

	assert.Zero(t, res.count("Cauca"))
	assert.Equal(t, StateLoaded, tr.State("s1"))
	assert.False(t, src.isTracked("s1"))
}

func TestTrigger_ReentryDuringResolutionIsNoop(t *testing.T) {
	src := newManualSource()
	res := newCountingResolver()
	res.block = make(chan struct{})
	var got collector
	tr := NewTrigger(context.Background(), src, res, got.add)

	tr.Observe(Slot{ID: "s1", Name: "Tolima"})
	src.enter("s1")
	src.enter("s1")
	src.enter("s1")
	assert.Equal(t, StateResolving, tr.State("s1"))

	close(res.block)
	tr.Wait()
	src.enter("s1")
	tr.Wait()

	assert.Equal(t, 1, res.count("Tolima"))
	assert.Len(t, got.all(), 1)
}

func TestTrigger_IndependentSlotsResolveConcurrently(t *testing.T) {
	src := newManualSource()
	res := newCountingResolver()
	var got collector
	tr := NewTrigger(context.Background(), src, res, got.add, WithConcurrency(2))

	tr.Observe(
		Slot{ID: "a", Name: "Arauca"},
		Slot{ID: "b", Name: "Bolívar"},
		Slot{ID: "c", Name: "Arauca"},
	)
	src.enter("c")
	src.enter("a")
	src.enter("b")
	tr.Wait()

	assert.Len(t, got.all(), 3)
	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, StateLoaded, tr.State(id), id)
	}
}

func TestTrigger_PanicEndsErroredAndUntracked(t *testing.T) {
	src := newManualSource()
	res := newCountingResolver()
	res.panic = true
	var got collector
	tr := NewTrigger(context.Background(), src, res, got.add)

	tr.Observe(Slot{ID: "s1", Name: "Putumayo"})
	src.enter("s1")
	tr.Wait()

	assert.Equal(t, StateErrored, tr.State("s1"))
	assert.False(t, src.isTracked("s1"))
	assert.Empty(t, got.all())

	src.enter("s1")
	tr.Wait()
	assert.Equal(t, 1, res.count("Putumayo"))
}

func TestTrigger_CloseDropsInFlight(t *testing.T) {
	src := newManualSource()
	res := newCountingResolver()
	res.block = make(chan struct{})
	var got collector
	tr := NewTrigger(context.Background(), src, res, got.add)

	tr.Observe(Slot{ID: "s1", Name: "Casanare"})
	src.enter("s1")
	tr.Close()
	close(res.block)
	tr.Wait()

	assert.Equal(t, StateErrored, tr.State("s1"))
	assert.Empty(t, got.all())

	tr.Observe(Slot{ID: "s2", Name: "Vichada"})
	src.enter("s2")
	tr.Wait()
	assert.Zero(t, res.count("Vichada"))
}

func TestTrigger_WithViewport(t *testing.T) {
	vp := NewViewport(1)
	res := newCountingResolver()
	var got collector
	tr := NewTrigger(context.Background(), vp, res, got.add)

	names := []string{"Amazonas", "Antioquia", "Arauca", "Atlántico", "Bolívar", "Boyacá"}
	ids := make([]string, len(names))
	slots := make([]Slot, len(names))
	for i, n := range names {
		ids[i] = n
		slots[i] = Slot{ID: n, Name: n}
	}
	vp.SetRows(ids)
	tr.Observe(slots...)

	// Rows 0-1 visible, row 2 inside the margin
	vp.Scroll(0, 2)
	tr.Wait()
	require.Len(t, got.all(), 3)
	assert.Zero(t, res.count("Atlántico"))

	vp.Scroll(3, 3)
	tr.Wait()
	assert.Len(t, got.all(), 6)

	// Scrolling back re-enters already loaded rows without new lookups
	vp.Scroll(0, 2)
	tr.Wait()
	for _, n := range names {
		assert.Equal(t, 1, res.count(n), n)
	}
}

func TestSlotState_String(t *testing.T) {
	assert.Equal(t, "Resolving", StateResolving.String())
	assert.Equal(t, "Unknown", SlotState(42).String())
}

func TestTrigger_WaitReturnsWithNothingDispatched(t *testing.T) {
	tr := NewTrigger(context.Background(), newManualSource(), newCountingResolver(), nil)
	done := make(chan struct{})
	go func() {
		tr.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked with no resolutions")
	}
}
