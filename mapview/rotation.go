package mapview

import "gioui.org/layout"

// RotationGestureOverlay lets two finger twists rotate the map while it is
// in the overlay list and enabled. It draws nothing.
type RotationGestureOverlay struct {
	Enabled bool
}

func NewRotationGestureOverlay() *RotationGestureOverlay {
	return &RotationGestureOverlay{}
}

func (r *RotationGestureOverlay) SetEnabled(enabled bool) {
	r.Enabled = enabled
}

func (r *RotationGestureOverlay) Draw(layout.Context, *MapView) {}
