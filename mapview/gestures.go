package mapview

import (
	"math"
	"time"

	"gioui.org/f32"
	"gioui.org/io/pointer"
)

const (
	LongPressDuration = 500 * time.Millisecond
	// touchSlop is how far, in pixels, a finger may wander before a press
	// becomes a drag.
	touchSlop = 12
)

type gestureState struct {
	pointers     map[pointer.ID]f32.Point
	pressAt      time.Time
	pressPos     f32.Point
	moved        bool
	longDone     bool
	dragNotified bool
	onControl    bool
	pinch        float64
}

func newGestureState() gestureState {
	return gestureState{pointers: make(map[pointer.ID]f32.Point)}
}

func (g *gestureState) waitingForLongPress() bool {
	return len(g.pointers) == 1 && !g.moved && !g.longDone && !g.onControl && !g.pressAt.IsZero()
}

// longPressDue reports, once per press, that the finger has been held
// still long enough.
func (g *gestureState) longPressDue(now time.Time) (bool, f32.Point) {
	if !g.waitingForLongPress() || now.Sub(g.pressAt) < LongPressDuration {
		return false, f32.Point{}
	}
	g.longDone = true
	return true, g.pressPos
}

func (g *gestureState) longPressDeadline() (time.Time, bool) {
	if !g.waitingForLongPress() {
		return time.Time{}, false
	}
	return g.pressAt.Add(LongPressDuration), true
}

func (g *gestureState) other(id pointer.ID) (f32.Point, bool) {
	for pid, pos := range g.pointers {
		if pid != id {
			return pos, true
		}
	}
	return f32.Point{}, false
}

func (mv *MapView) handlePointer(now time.Time, e pointer.Event) {
	g := &mv.gesture
	switch e.Kind {
	case pointer.Press:
		g.pointers[e.PointerID] = e.Position
		if len(g.pointers) == 1 {
			g.pressAt = now
			g.pressPos = e.Position
			g.moved = false
			g.longDone = false
			g.dragNotified = false
			g.onControl = mv.hitsControl(e.Position)
		} else {
			g.moved = true
			g.pinch = 1
		}

	case pointer.Drag:
		prev, ok := g.pointers[e.PointerID]
		if !ok {
			return
		}
		switch len(g.pointers) {
		case 1:
			if g.onControl {
				return
			}
			if !g.moved {
				if distance(e.Position, g.pressPos) <= touchSlop {
					return
				}
				g.moved = true
			}
			g.pointers[e.PointerID] = e.Position
			mv.notifyDrag()
			mv.pan(e.Position.Sub(prev))
		case 2:
			other, _ := g.other(e.PointerID)
			g.pointers[e.PointerID] = e.Position
			mv.notifyDrag()
			mv.twoFinger(prev, e.Position, other)
		default:
			g.pointers[e.PointerID] = e.Position
		}

	case pointer.Release:
		delete(g.pointers, e.PointerID)
		if len(g.pointers) == 0 {
			g.pressAt = time.Time{}
			g.onControl = false
		}

	case pointer.Cancel:
		clear(g.pointers)
		g.pressAt = time.Time{}
		g.onControl = false

	case pointer.Scroll:
		switch {
		case e.Scroll.Y < 0:
			mv.zoomAround(e.Position, 1)
		case e.Scroll.Y > 0:
			mv.zoomAround(e.Position, -1)
		}
	}
}

// twoFinger applies the movement of one finger from prev to cur while the
// other rests at anchor: the midpoint pans, the spread pinches and the
// angle rotates.
func (mv *MapView) twoFinger(prev, cur, anchor f32.Point) {
	g := &mv.gesture
	mv.pan(cur.Sub(prev).Mul(0.5))

	before := prev.Sub(anchor)
	after := cur.Sub(anchor)
	lb, la := length(before), length(after)
	if lb == 0 || la == 0 {
		return
	}

	if mv.MultiTouch {
		mid := anchor.Add(cur).Mul(0.5)
		g.pinch *= la / lb
		switch {
		case g.pinch >= 2:
			mv.zoomAround(mid, 1)
			g.pinch /= 2
		case g.pinch <= 0.5:
			mv.zoomAround(mid, -1)
			g.pinch *= 2
		}
	}

	if mv.rotationEnabled() {
		delta := math.Atan2(float64(after.Y), float64(after.X)) - math.Atan2(float64(before.Y), float64(before.X))
		mv.SetRotation(mv.Rotation + delta*180/math.Pi)
	}
}

func (mv *MapView) rotationEnabled() bool {
	for _, ov := range mv.overlays.items {
		if r, ok := ov.(*RotationGestureOverlay); ok && r.Enabled {
			return true
		}
	}
	return false
}

func (mv *MapView) hitsControl(pos f32.Point) bool {
	p := pos.Round()
	for _, ov := range mv.overlays.items {
		if c, ok := ov.(Control); ok && c.HitTest(p) {
			return true
		}
	}
	return false
}

func (mv *MapView) notifyDrag() {
	if mv.gesture.dragNotified {
		return
	}
	mv.gesture.dragNotified = true
	for _, ov := range mv.overlays.All() {
		if l, ok := ov.(DragListener); ok {
			l.OnUserDrag()
		}
	}
}

func distance(a, b f32.Point) float64 {
	return length(a.Sub(b))
}

func length(p f32.Point) float64 {
	return math.Hypot(float64(p.X), float64(p.Y))
}
