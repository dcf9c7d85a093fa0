package mapview

import (
	"testing"

	"gioui.org/layout"
	"github.com/olablt/gio-openmaps/tiles"
	"github.com/stretchr/testify/assert"
)

type lifecycleSpy struct {
	pauses, resumes int
}

func (l *lifecycleSpy) Draw(layout.Context, *MapView) {}
func (l *lifecycleSpy) OnPause()                      { l.pauses++ }
func (l *lifecycleSpy) OnResume()                     { l.resumes++ }

func TestOverlays(t *testing.T) {
	var list Overlays
	a := NewMarker(tiles.LatLng{Lat: 1, Lng: 1}, "a")
	b := NewMarker(tiles.LatLng{Lat: 2, Lng: 2}, "b")

	list.Add(a)
	list.Add(b)
	assert.Equal(t, 2, list.Len())
	assert.True(t, list.Contains(a))

	assert.True(t, list.Remove(a))
	assert.False(t, list.Remove(a))
	assert.False(t, list.Contains(a))
	assert.Equal(t, []Overlay{b}, list.All())
}

func TestMapView_PauseResume(t *testing.T) {
	mv := newTestMap()
	spy := &lifecycleSpy{}
	mv.Overlays().Add(spy)

	mv.OnResume()
	assert.Equal(t, 0, spy.resumes, "resume without pause is a no-op")

	mv.OnPause()
	mv.OnPause()
	mv.OnResume()
	assert.Equal(t, 1, spy.pauses)
	assert.Equal(t, 1, spy.resumes)
}
