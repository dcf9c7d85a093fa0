package mapview

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
)

var (
	compassFace  = color.NRGBA{R: 255, G: 255, B: 255, A: 220}
	compassNorth = color.NRGBA{R: 0xd3, G: 0x2f, B: 0x2f, A: 0xff}
	compassSouth = color.NRGBA{R: 0x75, G: 0x75, B: 0x75, A: 0xff}
)

// CompassOverlay shows where north is on the rotated map. Tapping it turns
// the map back to north up.
type CompassOverlay struct {
	Enabled bool
	Size    unit.Dp
	Margin  unit.Dp

	// Orientation, when set, reports the device heading in degrees
	// clockwise from north. The needle then points to north as seen from
	// the device.
	Orientation func() (float64, bool)

	click  widget.Clickable
	bounds image.Rectangle
}

func NewCompassOverlay() *CompassOverlay {
	return &CompassOverlay{Size: 44, Margin: 12}
}

func (c *CompassOverlay) EnableCompass()  { c.Enabled = true }
func (c *CompassOverlay) DisableCompass() { c.Enabled = false }

// Heading is the screen angle of north, in degrees clockwise from up.
func (c *CompassOverlay) Heading(mv *MapView) float64 {
	if c.Orientation != nil {
		if h, ok := c.Orientation(); ok {
			return normalizeDegrees(mv.Rotation - h)
		}
	}
	return normalizeDegrees(mv.Rotation)
}

func (c *CompassOverlay) Draw(gtx layout.Context, mv *MapView) {
	if !c.Enabled {
		c.bounds = image.Rectangle{}
		return
	}
	if c.click.Clicked(gtx) {
		mv.SetRotation(0)
	}

	margin := gtx.Dp(c.Margin)
	size := gtx.Dp(c.Size)
	c.bounds = image.Rect(margin, margin, margin+size, margin+size)
	defer op.Offset(image.Pt(margin, margin)).Push(gtx.Ops).Pop()

	cgtx := gtx
	cgtx.Constraints = layout.Exact(image.Pt(size, size))
	c.click.Layout(cgtx, func(gtx layout.Context) layout.Dimensions {
		c.drawFace(gtx, size, c.Heading(mv))
		return layout.Dimensions{Size: image.Pt(size, size)}
	})
}

// HitTest reports whether p, in map coordinates, is on the compass.
func (c *CompassOverlay) HitTest(p image.Point) bool {
	return c.Enabled && p.In(c.bounds)
}

func (c *CompassOverlay) drawFace(gtx layout.Context, size int, heading float64) {
	paint.FillShape(gtx.Ops, compassFace, clip.Ellipse{Max: image.Pt(size, size)}.Op(gtx.Ops))

	center := f32.Pt(float32(size)/2, float32(size)/2)
	rad := float32(heading * math.Pi / 180)
	defer op.Affine(f32.Affine2D{}.Rotate(center, rad)).Push(gtx.Ops).Pop()

	half := float32(size) / 2
	tip := half * 0.8
	base := half * 0.22
	needle := func(dir float32, col color.NRGBA) {
		var p clip.Path
		p.Begin(gtx.Ops)
		p.MoveTo(f32.Pt(center.X, center.Y+dir*tip))
		p.LineTo(f32.Pt(center.X-base, center.Y))
		p.LineTo(f32.Pt(center.X+base, center.Y))
		p.Close()
		paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
	}
	needle(-1, compassNorth)
	needle(1, compassSouth)
}
