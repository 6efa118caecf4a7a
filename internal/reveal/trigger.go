// Package reveal loads thumbnail images lazily as their slots approach the visible area.
//
// A Trigger watches a VisibilitySource and, the first time a slot enters the
// proximity zone, resolves that slot's image exactly once and reports it.
// Each slot moves through:
//
//	Unobserved → Observed → Resolving → Loaded | Errored
//
// and is untracked once handled. There is no ordering between slots.
package reveal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

// SlotState is the lifecycle position of one thumbnail slot
type SlotState int

const (
	StateUnobserved SlotState = iota
	StateObserved
	StateResolving
	StateLoaded
	StateErrored
)

// String returns a human-readable slot state
func (s SlotState) String() string {
	switch s {
	case StateUnobserved:
		return "Unobserved"
	case StateObserved:
		return "Observed"
	case StateResolving:
		return "Resolving"
	case StateLoaded:
		return "Loaded"
	case StateErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// Slot is one rendered thumbnail placeholder
type Slot struct {
	ID     string // Unique within one rendered list
	Name   string // Department display name used for lookup
	Loaded bool   // Already showing its image
}

// Result reports a slot whose image was resolved
type Result struct {
	SlotID string
	Name   string
	URL    string
}

// Resolver produces an image URL for a name and never fails
type Resolver interface {
	Resolve(ctx context.Context, name string) string
}

// VisibilitySource reports tracked items entering the proximity zone.
// Track on an item already inside the zone reports it immediately.
type VisibilitySource interface {
	Track(id string)
	Untrack(id string)
	OnEnter(fn func(id string))
}

type slotEntry struct {
	slot  Slot
	state SlotState
}

// Trigger dispatches one resolution per slot on first proximity entry
type Trigger struct {
	ctx      context.Context
	cancel   context.CancelFunc
	source   VisibilitySource
	resolver Resolver
	onLoad   func(Result)
	sem      *semaphore.Weighted
	logger   *slog.Logger

	mu    sync.Mutex
	slots map[string]*slotEntry

	wg sync.WaitGroup
}

// TriggerOption configures a Trigger
type TriggerOption func(*Trigger)

// WithConcurrency bounds how many slots resolve at the same time
func WithConcurrency(n int) TriggerOption {
	return func(t *Trigger) {
		if n > 0 {
			t.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) TriggerOption {
	return func(t *Trigger) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTrigger subscribes to source. onLoad is called from a worker goroutine for
// every slot that reaches Loaded; it is never called after Close.
func NewTrigger(ctx context.Context, source VisibilitySource, resolver Resolver, onLoad func(Result), opts ...TriggerOption) *Trigger {
	ctx, cancel := context.WithCancel(ctx)
	t := &Trigger{
		ctx:      ctx,
		cancel:   cancel,
		source:   source,
		resolver: resolver,
		onLoad:   onLoad,
		logger:   slog.Default(),
		slots:    make(map[string]*slotEntry),
	}
	for _, opt := range opts {
		opt(t)
	}
	source.OnEnter(t.handleEnter)
	return t
}

// Observe registers slots for proximity watching. A slot is registered once;
// repeated registrations of the same ID are ignored.
func (t *Trigger) Observe(slots ...Slot) {
	var added []string

	t.mu.Lock()
	for _, s := range slots {
		if _, ok := t.slots[s.ID]; ok {
			continue
		}
		t.slots[s.ID] = &slotEntry{slot: s, state: StateObserved}
		added = append(added, s.ID)
	}
	t.mu.Unlock()

	// Track may report entry synchronously, which re-enters handleEnter
	for _, id := range added {
		t.source.Track(id)
	}
}

// State returns the current state of a slot
func (t *Trigger) State(id string) SlotState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.slots[id]; ok {
		return e.state
	}
	return StateUnobserved
}

// Close discards the watcher. In-flight resolutions finish as Errored and
// deliver nothing.
func (t *Trigger) Close() {
	t.cancel()
}

// Wait blocks until every dispatched resolution has finished
func (t *Trigger) Wait() {
	t.wg.Wait()
}

func (t *Trigger) handleEnter(id string) {
	if t.ctx.Err() != nil {
		return
	}

	t.mu.Lock()
	e, ok := t.slots[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	if e.slot.Loaded {
		e.state = StateLoaded
		t.mu.Unlock()
		t.source.Untrack(id)
		return
	}
	if e.state != StateObserved {
		t.mu.Unlock()
		return
	}
	// Check and mark under one lock so a slot can only dispatch once
	e.state = StateResolving
	slot := e.slot
	t.mu.Unlock()

	t.wg.Add(1)
	go t.resolve(slot)
}

func (t *Trigger) resolve(slot Slot) {
	defer t.wg.Done()
	defer t.source.Untrack(slot.ID)

	url, err := t.run(slot)
	if err == nil && t.ctx.Err() != nil {
		err = t.ctx.Err()
	}

	t.mu.Lock()
	e := t.slots[slot.ID]
	if err != nil {
		e.state = StateErrored
	} else {
		e.state = StateLoaded
		e.slot.Loaded = true
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Debug("thumbnail resolution dropped", "slot", slot.ID, "name", slot.Name, "error", err)
		return
	}
	if t.onLoad != nil {
		t.onLoad(Result{SlotID: slot.ID, Name: slot.Name, URL: url})
	}
}

// run performs the bounded resolution, converting a resolver panic into an error
func (t *Trigger) run(slot Slot) (url string, err error) {
	if t.sem != nil {
		if err := t.sem.Acquire(t.ctx, 1); err != nil {
			return "", err
		}
		defer t.sem.Release(1)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolver panic: %v", r)
		}
	}()
	return t.resolver.Resolve(t.ctx, slot.Name), nil
}
