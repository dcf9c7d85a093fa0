package mapview

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
	"github.com/olablt/gio-openmaps/tiles"
)

var background = color.NRGBA{R: 229, G: 227, B: 223, A: 255}

type MapView struct {
	Tiles    *tiles.Manager
	Theme    *material.Theme
	Center   tiles.LatLng
	Zoom     int
	MinZoom  int
	MaxZoom  int
	Rotation float64 // degrees, clockwise

	// MultiTouch enables pinch zoom. Two finger rotation additionally
	// needs an enabled RotationGestureOverlay.
	MultiTouch bool

	// OnLongPress is called with the coordinate under the finger.
	OnLongPress func(at tiles.LatLng)

	overlays   Overlays
	size       image.Point
	gesture    gestureState
	paused     bool
	invalidate func()
}

func New(manager *tiles.Manager, th *material.Theme) *MapView {
	return &MapView{
		Tiles:      manager,
		Theme:      th,
		Zoom:       2,
		MinZoom:    0,
		MaxZoom:    19,
		MultiTouch: true,
		gesture:    newGestureState(),
	}
}

// SetInvalidator registers the function that schedules a redraw. It must
// be safe to call from any goroutine.
func (mv *MapView) SetInvalidator(f func()) {
	mv.invalidate = f
}

// Invalidate asks for a new frame.
func (mv *MapView) Invalidate() {
	if mv.invalidate != nil {
		mv.invalidate()
	}
}

func (mv *MapView) Overlays() *Overlays {
	return &mv.overlays
}

func (mv *MapView) Size() image.Point {
	return mv.size
}

func (mv *MapView) Projection() Projection {
	return NewProjection(mv.Center, mv.Zoom, mv.Rotation, mv.size)
}

func (mv *MapView) MapCenter() tiles.LatLng {
	return mv.Center
}

func (mv *MapView) SetCenter(ll tiles.LatLng) {
	mv.Center = ll.Clamp()
	mv.Invalidate()
}

func (mv *MapView) SetZoom(zoom int) {
	mv.Zoom = max(mv.MinZoom, min(zoom, mv.MaxZoom))
	mv.Invalidate()
}

// ZoomIn zooms one level in and reports whether the zoom changed.
func (mv *MapView) ZoomIn() bool {
	old := mv.Zoom
	mv.SetZoom(mv.Zoom + 1)
	return mv.Zoom != old
}

func (mv *MapView) ZoomOut() bool {
	old := mv.Zoom
	mv.SetZoom(mv.Zoom - 1)
	return mv.Zoom != old
}

func (mv *MapView) SetRotation(deg float64) {
	mv.Rotation = normalizeDegrees(deg)
	mv.Invalidate()
}

// zoomAround changes the zoom by delta levels keeping the coordinate under
// the screen point pos in place.
func (mv *MapView) zoomAround(pos f32.Point, delta int) {
	p := mv.Projection()
	old := mv.Zoom
	mv.Zoom = max(mv.MinZoom, min(mv.Zoom+delta, mv.MaxZoom))
	if mv.Zoom == old {
		return
	}

	ux, uy := p.Unrotate(p.offset(pos))
	cx, cy := p.CenterWorld()
	factor := math.Exp2(float64(mv.Zoom - old))
	newX := (cx+ux)*factor - ux
	newY := (cy+uy)*factor - uy
	mv.Center = tiles.WorldToLatLng(newX, newY, mv.Zoom).Clamp()
}

// pan moves the map content by the screen vector d.
func (mv *MapView) pan(d f32.Point) {
	p := mv.Projection()
	ux, uy := p.Unrotate(float64(d.X), float64(d.Y))
	cx, cy := p.CenterWorld()
	mv.Center = tiles.WorldToLatLng(cx-ux, cy-uy, mv.Zoom).Clamp()
}

// OnPause stops tile loading and pauses overlays that track the device.
func (mv *MapView) OnPause() {
	if mv.paused {
		return
	}
	mv.paused = true
	if mv.Tiles != nil {
		mv.Tiles.Pause()
	}
	for _, ov := range mv.overlays.All() {
		if l, ok := ov.(Lifecycle); ok {
			l.OnPause()
		}
	}
}

func (mv *MapView) OnResume() {
	if !mv.paused {
		return
	}
	mv.paused = false
	if mv.Tiles != nil {
		mv.Tiles.Resume()
	}
	for _, ov := range mv.overlays.All() {
		if l, ok := ov.(Lifecycle); ok {
			l.OnResume()
		}
	}
	mv.Invalidate()
}

func (mv *MapView) Layout(gtx layout.Context) layout.Dimensions {
	mv.size = gtx.Constraints.Max

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  mv,
			Kinds:   pointer.Scroll | pointer.Drag | pointer.Press | pointer.Release | pointer.Cancel,
			ScrollY: pointer.ScrollRange{Min: -10, Max: 10},
		})
		if !ok {
			break
		}
		if e, ok := ev.(pointer.Event); ok {
			mv.handlePointer(gtx.Now, e)
		}
	}
	if fire, at := mv.gesture.longPressDue(gtx.Now); fire {
		if mv.OnLongPress != nil {
			mv.OnLongPress(mv.Projection().FromScreen(at))
		}
	} else if deadline, ok := mv.gesture.longPressDeadline(); ok {
		gtx.Execute(op.InvalidateCmd{At: deadline})
	}

	for _, ov := range mv.overlays.All() {
		if u, ok := ov.(Updater); ok {
			u.Update(mv)
		}
	}

	defer clip.Rect{Max: mv.size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, mv)
	paint.Fill(gtx.Ops, background)

	p := mv.Projection()
	if mv.Tiles != nil {
		mv.drawTiles(gtx, p)
	}
	for _, ov := range mv.overlays.All() {
		ov.Draw(gtx, mv)
	}

	return layout.Dimensions{Size: mv.size}
}

func (mv *MapView) drawTiles(gtx layout.Context, p Projection) {
	center := f32.Pt(float32(mv.size.X)/2, float32(mv.size.Y)/2)
	rot := op.Affine(f32.Affine2D{}.Rotate(center, float32(mv.Rotation*math.Pi/180))).Push(gtx.Ops)
	defer rot.Pop()

	cx, cy := p.CenterWorld()
	for _, tile := range tiles.CalculateVisibleTiles(mv.Center, mv.Zoom, p.Coverage()) {
		img, _ := mv.Tiles.Get(tile)
		if img.Size() == (image.Point{}) {
			continue
		}

		x := float64(mv.size.X)/2 + float64(tile.X*tiles.TileSize) - cx
		y := float64(mv.size.Y)/2 + float64(tile.Y*tiles.TileSize) - cy
		offset := op.Offset(image.Pt(int(math.Round(x)), int(math.Round(y)))).Push(gtx.Ops)
		area := clip.Rect{Max: image.Pt(tiles.TileSize, tiles.TileSize)}.Push(gtx.Ops)
		img.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		area.Pop()
		offset.Pop()
	}
}
