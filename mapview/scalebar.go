package mapview

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"github.com/olablt/gio-openmaps/tiles"
)

var scaleBarColor = color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff}

// ScaleBarOverlay draws a bar of a round distance at the map center's
// latitude.
type ScaleBarOverlay struct {
	Enabled     bool
	AlignBottom bool
	AlignRight  bool
	MaxWidth    unit.Dp
	Margin      unit.Dp
}

func NewScaleBarOverlay() *ScaleBarOverlay {
	return &ScaleBarOverlay{Enabled: true, MaxWidth: 110, Margin: 12}
}

func (s *ScaleBarOverlay) SetAlignBottom(bottom bool) { s.AlignBottom = bottom }
func (s *ScaleBarOverlay) SetAlignRight(right bool)   { s.AlignRight = right }

// ScaleFor returns the longest 1, 2 or 5 times a power of ten distance, in
// meters, that fits in maxPx pixels, and its length in pixels.
func ScaleFor(metersPerPixel float64, maxPx int) (float64, int) {
	if metersPerPixel <= 0 || maxPx <= 0 {
		return 0, 0
	}
	limit := metersPerPixel * float64(maxPx)
	base := math.Pow(10, math.Floor(math.Log10(limit)))
	if base*10 <= limit {
		// Log10 can land just under an exact power of ten
		base *= 10
	}
	meters := base
	for _, f := range []float64{5, 2, 1} {
		if f*base <= limit {
			meters = f * base
			break
		}
	}
	return meters, int(math.Round(meters / metersPerPixel))
}

// FormatDistance renders meters as "200 m" or "5 km".
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return strconv.FormatFloat(meters/1000, 'f', -1, 64) + " km"
	}
	return strconv.FormatFloat(meters, 'f', -1, 64) + " m"
}

func (s *ScaleBarOverlay) Draw(gtx layout.Context, mv *MapView) {
	if !s.Enabled {
		return
	}
	mpp := tiles.CalculateMetersPerPixel(mv.Center.Lat, mv.Zoom)
	meters, px := ScaleFor(mpp, gtx.Dp(s.MaxWidth))
	if px == 0 {
		return
	}

	margin := gtx.Dp(s.Margin)
	thick := max(gtx.Dp(unit.Dp(2)), 1)
	tick := gtx.Dp(unit.Dp(6))
	labelRoom := gtx.Dp(unit.Dp(24))

	x := margin
	if s.AlignRight {
		x = mv.size.X - margin - px
	}
	y := margin + labelRoom
	if s.AlignBottom {
		y = mv.size.Y - margin - tick
	}
	defer op.Offset(image.Pt(x, y)).Push(gtx.Ops).Pop()

	bars := []image.Rectangle{
		image.Rect(0, tick-thick, px, tick),
		image.Rect(0, 0, thick, tick),
		image.Rect(px-thick, 0, px, tick),
	}
	for _, r := range bars {
		paint.FillShape(gtx.Ops, scaleBarColor, clip.Rect(r).Op())
	}

	if mv.Theme != nil {
		drawLabel(gtx, mv.Theme, FormatDistance(meters), image.Pt(px/2, -gtx.Dp(unit.Dp(2))), mv.size.X)
	}
}
