package mapview

import (
	"image"
	"image/color"
	"math"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/olablt/gio-openmaps/tiles"
	"golang.org/x/image/vector"
)

const (
	AnchorLeft   float32 = 0
	AnchorTop    float32 = 0
	AnchorCenter float32 = 0.5
	AnchorRight  float32 = 1
	AnchorBottom float32 = 1
)

var pinColor = color.NRGBA{R: 0xd3, G: 0x2f, B: 0x2f, A: 0xff}

// Marker pins an icon and a title to a coordinate. The anchor is the point
// of the icon, as a fraction of its size, that sits on the coordinate.
type Marker struct {
	Position tiles.LatLng
	Title    string
	Icon     image.Image
	AnchorU  float32
	AnchorV  float32

	iconSrc image.Image
	iconOp  paint.ImageOp
}

func NewMarker(pos tiles.LatLng, title string) *Marker {
	return &Marker{
		Position: pos,
		Title:    title,
		AnchorU:  AnchorCenter,
		AnchorV:  AnchorBottom,
	}
}

func (m *Marker) SetAnchor(u, v float32) {
	m.AnchorU, m.AnchorV = u, v
}

func (m *Marker) Draw(gtx layout.Context, mv *MapView) {
	if m.Icon == nil {
		m.Icon = DefaultIcon(gtx.Dp(unit.Dp(36)), pinColor)
	}
	if m.iconSrc != m.Icon {
		m.iconOp = paint.NewImageOp(m.Icon)
		m.iconSrc = m.Icon
	}

	pt := mv.Projection().ToScreen(m.Position)
	size := m.iconOp.Size()
	origin := image.Pt(
		int(math.Round(float64(pt.X)-float64(m.AnchorU)*float64(size.X))),
		int(math.Round(float64(pt.Y)-float64(m.AnchorV)*float64(size.Y))),
	)

	offset := op.Offset(origin).Push(gtx.Ops)
	area := clip.Rect{Max: size}.Push(gtx.Ops)
	m.iconOp.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
	area.Pop()
	offset.Pop()

	if m.Title != "" && mv.Theme != nil {
		top := image.Pt(origin.X+size.X/2, origin.Y-gtx.Dp(unit.Dp(2)))
		drawLabel(gtx, mv.Theme, m.Title, top, mv.size.X*3/5)
	}
}

// drawLabel draws txt on a light box whose bottom center is at anchor.
func drawLabel(gtx layout.Context, th *material.Theme, txt string, anchor image.Point, maxWidth int) {
	lbl := material.Body2(th, txt)
	lbl.MaxLines = 1

	cgtx := gtx
	cgtx.Constraints = layout.Constraints{Max: image.Pt(max(maxWidth, 1), gtx.Constraints.Max.Y)}
	macro := op.Record(gtx.Ops)
	dims := lbl.Layout(cgtx)
	call := macro.Stop()

	pad := gtx.Dp(unit.Dp(4))
	box := dims.Size.Add(image.Pt(2*pad, 2*pad))
	origin := image.Pt(anchor.X-box.X/2, anchor.Y-box.Y)

	defer op.Offset(origin).Push(gtx.Ops).Pop()
	paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 230},
		clip.UniformRRect(image.Rectangle{Max: box}, gtx.Dp(unit.Dp(3))).Op(gtx.Ops))
	defer op.Offset(image.Pt(pad, pad)).Push(gtx.Ops).Pop()
	call.Add(gtx.Ops)
}

// DefaultIcon rasterizes a map pin, size pixels tall, with its tip at the
// bottom center.
func DefaultIcon(size int, fill color.NRGBA) *image.RGBA {
	size = max(size, 8)
	w := size * 3 / 4
	img := image.NewRGBA(image.Rect(0, 0, w, size))

	cx := float32(w) / 2
	r := cx - 1
	cy := r + 1

	z := vector.NewRasterizer(w, size)
	z.MoveTo(cx, float32(size))
	for deg := 150; deg <= 390; deg += 10 {
		sin, cos := math.Sincos(float64(deg) * math.Pi / 180)
		z.LineTo(cx+r*float32(cos), cy+r*float32(sin))
	}
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{})

	z.Reset(w, size)
	dot := r * 0.4
	z.MoveTo(cx+dot, cy)
	for deg := 15; deg <= 360; deg += 15 {
		sin, cos := math.Sincos(float64(deg) * math.Pi / 180)
		z.LineTo(cx+dot*float32(cos), cy+dot*float32(sin))
	}
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{})

	return img
}
