package screen

import (
	"image"
	"image/color"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

// Notice durations, matching Android toasts.
const (
	Short = 2 * time.Second
	Long  = 3500 * time.Millisecond
)

var noticeBackground = color.NRGBA{R: 0x32, G: 0x32, B: 0x32, A: 0xe6}

// notice is a transient message shown at the bottom of the map. A new
// message replaces the current one.
type notice struct {
	text  string
	dur   time.Duration
	until time.Time
}

// Show starts the countdown at the next frame that draws the notice.
func (n *notice) Show(text string, d time.Duration) {
	n.text = text
	n.dur = d
	n.until = time.Time{}
}

func (n *notice) Text() string {
	return n.text
}

func (n *notice) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	if n.text == "" {
		return layout.Dimensions{}
	}
	if n.until.IsZero() {
		n.until = gtx.Now.Add(n.dur)
	}
	if !gtx.Now.Before(n.until) {
		n.text = ""
		return layout.Dimensions{}
	}
	gtx.Execute(op.InvalidateCmd{At: n.until})

	return layout.Inset{Bottom: unit.Dp(72), Left: unit.Dp(24), Right: unit.Dp(24)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		pad := gtx.Dp(unit.Dp(12))
		lbl := material.Body1(th, n.text)
		lbl.Color = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		lbl.MaxLines = 3

		cgtx := gtx
		cgtx.Constraints.Min = image.Point{}
		cgtx.Constraints.Max.X = max(gtx.Constraints.Max.X-2*pad, 0)
		macro := op.Record(gtx.Ops)
		dims := lbl.Layout(cgtx)
		call := macro.Stop()

		size := dims.Size.Add(image.Pt(2*pad, 2*pad))
		paint.FillShape(gtx.Ops, noticeBackground,
			clip.UniformRRect(image.Rectangle{Max: size}, size.Y/2).Op(gtx.Ops))
		off := op.Offset(image.Pt(pad, pad)).Push(gtx.Ops)
		call.Add(gtx.Ops)
		off.Pop()
		return layout.Dimensions{Size: size}
	})
}
