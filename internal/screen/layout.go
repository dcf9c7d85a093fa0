package screen

import (
	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

func (s *Screen) Layout(gtx layout.Context) layout.Dimensions {
	s.RunPending()
	s.handleInput(gtx)

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(s.layoutSearchBar),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Stack{}.Layout(gtx,
				layout.Stacked(s.mv.Layout),
				layout.Expanded(func(gtx layout.Context) layout.Dimensions {
					return layout.SE.Layout(gtx, s.layoutZoomControls)
				}),
				layout.Expanded(func(gtx layout.Context) layout.Dimensions {
					return layout.S.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						return s.notice.Layout(gtx, s.th)
					})
				}),
			)
		}),
	)
}

func (s *Screen) handleInput(gtx layout.Context) {
	for {
		ev, ok := s.address.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok {
			s.Search(s.address.Text())
		}
	}
	if s.searchBtn.Clicked(gtx) {
		s.Search(s.address.Text())
	}
	if s.zoomIn.Clicked(gtx) {
		s.mv.ZoomIn()
	}
	if s.zoomOut.Clicked(gtx) {
		s.mv.ZoomOut()
	}
}

func (s *Screen) layoutSearchBar(gtx layout.Context) layout.Dimensions {
	return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				ed := material.Editor(s.th, &s.address, "Enter address")
				return layout.Inset{Right: unit.Dp(8)}.Layout(gtx, ed.Layout)
			}),
			layout.Rigid(material.Button(s.th, &s.searchBtn, "Search").Layout),
		)
	})
}

func (s *Screen) layoutZoomControls(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Right: unit.Dp(12), Bottom: unit.Dp(48)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(material.Button(s.th, &s.zoomIn, "+").Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(material.Button(s.th, &s.zoomOut, "−").Layout),
		)
	})
}
