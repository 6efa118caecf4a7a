package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewport_ReportsEntriesInRowOrder(t *testing.T) {
	vp := NewViewport(0)
	var entered []string
	vp.OnEnter(func(id string) { entered = append(entered, id) })

	vp.SetRows([]string{"a", "b", "c", "d"})
	for _, id := range []string{"d", "c", "b", "a"} {
		vp.Track(id)
	}
	assert.Empty(t, entered, "no window yet")

	vp.Scroll(1, 2)
	assert.Equal(t, []string{"b", "c"}, entered)
}

func TestViewport_TrackInsideZoneFiresImmediately(t *testing.T) {
	vp := NewViewport(2)
	var entered []string
	vp.OnEnter(func(id string) { entered = append(entered, id) })

	vp.SetRows([]string{"a", "b", "c", "d", "e", "f"})
	vp.Scroll(0, 1)
	vp.Track("c")
	vp.Track("e")

	assert.Equal(t, []string{"c"}, entered)
}

func TestViewport_LeavingAndReentering(t *testing.T) {
	vp := NewViewport(0)
	count := 0
	vp.OnEnter(func(id string) { count++ })

	vp.SetRows([]string{"a", "b", "c"})
	vp.Track("a")
	vp.Scroll(0, 1)
	vp.Scroll(0, 1)
	assert.Equal(t, 1, count, "staying inside does not re-fire")

	vp.Scroll(2, 1)
	vp.Scroll(0, 1)
	assert.Equal(t, 2, count)

	vp.Untrack("a")
	vp.Scroll(2, 1)
	vp.Scroll(0, 1)
	assert.Equal(t, 2, count)
	assert.False(t, vp.Tracked("a"))
}
