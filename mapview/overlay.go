package mapview

import (
	"image"

	"gioui.org/layout"
)

// Overlay is anything drawn on top of the tiles. Overlays are drawn in the
// order they were added.
type Overlay interface {
	Draw(gtx layout.Context, mv *MapView)
}

// Updater overlays run before the tiles of a frame are laid out, so they
// may move the map without a one frame lag.
type Updater interface {
	Update(mv *MapView)
}

// Lifecycle overlays follow the pause and resume of the map.
type Lifecycle interface {
	OnPause()
	OnResume()
}

// DragListener overlays are told when the user starts panning the map.
type DragListener interface {
	OnUserDrag()
}

// Control overlays own an area of the map that handles its own input.
// Presses landing there neither pan the map nor count as long presses.
type Control interface {
	HitTest(p image.Point) bool
}

// Overlays is the ordered overlay list of a map.
type Overlays struct {
	items []Overlay
}

func (o *Overlays) Add(ov Overlay) {
	o.items = append(o.items, ov)
}

// Remove deletes ov and reports whether it was present.
func (o *Overlays) Remove(ov Overlay) bool {
	for i, it := range o.items {
		if it == ov {
			o.items = append(o.items[:i], o.items[i+1:]...)
			return true
		}
	}
	return false
}

func (o *Overlays) Contains(ov Overlay) bool {
	for _, it := range o.items {
		if it == ov {
			return true
		}
	}
	return false
}

func (o *Overlays) Len() int {
	return len(o.items)
}

// All returns a snapshot of the list; overlays may change the list while
// it is being walked.
func (o *Overlays) All() []Overlay {
	return append([]Overlay(nil), o.items...)
}
