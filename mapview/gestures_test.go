package mapview

import (
	"image"
	"testing"
	"time"

	"gioui.org/f32"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"github.com/olablt/gio-openmaps/tiles"
	"github.com/stretchr/testify/assert"
)

func newTestMap() *MapView {
	mv := New(nil, nil)
	mv.size = image.Pt(400, 800)
	mv.Center = eiffel
	mv.Zoom = 15
	mv.MinZoom = 2
	mv.MaxZoom = 19
	return mv
}

func press(id pointer.ID, x, y float32) pointer.Event {
	return pointer.Event{Kind: pointer.Press, Source: pointer.Touch, PointerID: id, Position: f32.Pt(x, y)}
}

func drag(id pointer.ID, x, y float32) pointer.Event {
	return pointer.Event{Kind: pointer.Drag, Source: pointer.Touch, PointerID: id, Position: f32.Pt(x, y)}
}

func release(id pointer.ID, x, y float32) pointer.Event {
	return pointer.Event{Kind: pointer.Release, Source: pointer.Touch, PointerID: id, Position: f32.Pt(x, y)}
}

type dragSpy struct{ drags int }

func (d *dragSpy) Draw(gtx layout.Context, mv *MapView) {}
func (d *dragSpy) OnUserDrag()                          { d.drags++ }

func TestDragPansMap(t *testing.T) {
	mv := newTestMap()
	spy := &dragSpy{}
	mv.Overlays().Add(spy)
	now := time.Now()
	wx, wy := tiles.CalculateWorldCoordinates(mv.Center, mv.Zoom)

	mv.handlePointer(now, press(0, 200, 400))
	mv.handlePointer(now, drag(0, 205, 400))
	assert.Equal(t, eiffel, mv.Center, "movement within the touch slop is ignored")

	mv.handlePointer(now, drag(0, 250, 400))
	mv.handlePointer(now, drag(0, 250, 430))
	mv.handlePointer(now, release(0, 250, 430))

	nx, ny := tiles.CalculateWorldCoordinates(mv.Center, mv.Zoom)
	assert.InDelta(t, wx-50, nx, 1e-6)
	assert.InDelta(t, wy-30, ny, 1e-6)
	assert.Equal(t, 1, spy.drags)
}

func TestDragOnRotatedMap(t *testing.T) {
	mv := newTestMap()
	mv.Rotation = 90
	wx, wy := tiles.CalculateWorldCoordinates(mv.Center, mv.Zoom)

	mv.handlePointer(time.Now(), press(0, 200, 400))
	mv.handlePointer(time.Now(), drag(0, 200, 440))

	// on a map turned 90 degrees clockwise, dragging down moves the view west
	nx, ny := tiles.CalculateWorldCoordinates(mv.Center, mv.Zoom)
	assert.InDelta(t, wx-40, nx, 1e-6)
	assert.InDelta(t, wy, ny, 1e-6)
}

func TestLongPress(t *testing.T) {
	mv := newTestMap()
	t0 := time.Now()

	mv.handlePointer(t0, press(0, 120, 300))
	fire, _ := mv.gesture.longPressDue(t0.Add(400 * time.Millisecond))
	assert.False(t, fire)

	deadline, ok := mv.gesture.longPressDeadline()
	assert.True(t, ok)
	assert.Equal(t, t0.Add(LongPressDuration), deadline)

	fire, at := mv.gesture.longPressDue(t0.Add(600 * time.Millisecond))
	assert.True(t, fire)
	assert.Equal(t, f32.Pt(120, 300), at)

	fire, _ = mv.gesture.longPressDue(t0.Add(time.Second))
	assert.False(t, fire, "fires once per press")
}

func TestLongPressCanceledByDrag(t *testing.T) {
	mv := newTestMap()
	t0 := time.Now()

	mv.handlePointer(t0, press(0, 120, 300))
	mv.handlePointer(t0, drag(0, 180, 300))
	fire, _ := mv.gesture.longPressDue(t0.Add(time.Second))
	assert.False(t, fire)

	mv.handlePointer(t0, release(0, 180, 300))
	_, ok := mv.gesture.longPressDeadline()
	assert.False(t, ok)
}

func TestScrollZoomKeepsCursorPosition(t *testing.T) {
	mv := newTestMap()
	cursor := f32.Pt(80, 650)
	before := mv.Projection().FromScreen(cursor)

	mv.handlePointer(time.Now(), pointer.Event{Kind: pointer.Scroll, Position: cursor, Scroll: f32.Pt(0, -1)})
	assert.Equal(t, 16, mv.Zoom)

	after := mv.Projection().FromScreen(cursor)
	assert.InDelta(t, before.Lat, after.Lat, 1e-7)
	assert.InDelta(t, before.Lng, after.Lng, 1e-7)

	mv.handlePointer(time.Now(), pointer.Event{Kind: pointer.Scroll, Position: cursor, Scroll: f32.Pt(0, 1)})
	assert.Equal(t, 15, mv.Zoom)
}

func TestPinchZoom(t *testing.T) {
	mv := newTestMap()
	now := time.Now()

	mv.handlePointer(now, press(0, 100, 400))
	mv.handlePointer(now, press(1, 300, 400))
	mv.handlePointer(now, drag(1, 500, 400))
	assert.Equal(t, 16, mv.Zoom)

	mv.MultiTouch = false
	mv.handlePointer(now, drag(1, 900, 400))
	assert.Equal(t, 16, mv.Zoom)
}

func TestTwoFingerRotation(t *testing.T) {
	t.Run("needs the rotation overlay", func(t *testing.T) {
		mv := newTestMap()
		now := time.Now()
		mv.handlePointer(now, press(0, 100, 400))
		mv.handlePointer(now, press(1, 300, 400))
		mv.handlePointer(now, drag(1, 200, 300))
		assert.Equal(t, 0.0, mv.Rotation)
	})

	t.Run("rotates when enabled", func(t *testing.T) {
		mv := newTestMap()
		rot := NewRotationGestureOverlay()
		rot.SetEnabled(true)
		mv.Overlays().Add(rot)

		now := time.Now()
		mv.handlePointer(now, press(0, 100, 400))
		mv.handlePointer(now, press(1, 300, 400))
		mv.handlePointer(now, drag(1, 200, 300))
		assert.InDelta(t, 315.0, mv.Rotation, 1e-6)
	})
}

func TestZoomControls(t *testing.T) {
	mv := newTestMap()
	invalidated := 0
	mv.SetInvalidator(func() { invalidated++ })

	mv.SetZoom(19)
	assert.False(t, mv.ZoomIn())
	assert.True(t, mv.ZoomOut())
	assert.Equal(t, 18, mv.Zoom)

	mv.SetZoom(0)
	assert.Equal(t, 2, mv.Zoom)
	assert.False(t, mv.ZoomOut())
	assert.Positive(t, invalidated)
}

func TestPressOnControl(t *testing.T) {
	mv := newTestMap()
	compass := NewCompassOverlay()
	compass.EnableCompass()
	compass.bounds = image.Rect(12, 12, 56, 56)
	mv.Overlays().Add(compass)
	t0 := time.Now()

	t.Run("no long press", func(t *testing.T) {
		mv.handlePointer(t0, press(0, 30, 30))
		fire, _ := mv.gesture.longPressDue(t0.Add(time.Second))
		assert.False(t, fire)
		_, ok := mv.gesture.longPressDeadline()
		assert.False(t, ok)
		mv.handlePointer(t0, release(0, 30, 30))
	})

	t.Run("no pan", func(t *testing.T) {
		mv.handlePointer(t0, press(0, 30, 30))
		mv.handlePointer(t0, drag(0, 200, 300))
		mv.handlePointer(t0, release(0, 200, 300))
		assert.Equal(t, eiffel, mv.Center)
	})

	t.Run("outside the control", func(t *testing.T) {
		mv.handlePointer(t0, press(0, 120, 300))
		fire, _ := mv.gesture.longPressDue(t0.Add(time.Second))
		assert.True(t, fire)
		mv.handlePointer(t0, release(0, 120, 300))
	})

	t.Run("disabled control", func(t *testing.T) {
		compass.DisableCompass()
		mv.handlePointer(t0, press(0, 30, 30))
		fire, _ := mv.gesture.longPressDue(t0.Add(time.Second))
		assert.True(t, fire)
		mv.handlePointer(t0, release(0, 30, 30))
	})
}
