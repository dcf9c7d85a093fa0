package mapview

import (
	"image"
	"testing"

	"gioui.org/f32"
	"github.com/olablt/gio-openmaps/tiles"
	"github.com/stretchr/testify/assert"
)

var eiffel = tiles.LatLng{Lat: 48.8583, Lng: 2.2944}

func TestProjection_CenterIsScreenMiddle(t *testing.T) {
	p := NewProjection(eiffel, 15, 37, image.Pt(400, 800))
	pt := p.ToScreen(eiffel)
	assert.InDelta(t, 200, pt.X, 1e-3)
	assert.InDelta(t, 400, pt.Y, 1e-3)

	ll := p.FromScreen(f32.Pt(200, 400))
	assert.InDelta(t, eiffel.Lat, ll.Lat, 1e-9)
	assert.InDelta(t, eiffel.Lng, ll.Lng, 1e-9)
}

func TestProjection_RoundTrip(t *testing.T) {
	for _, rotation := range []float64{0, 30, 90, 215} {
		p := NewProjection(eiffel, 14, rotation, image.Pt(1080, 1920))
		for _, pt := range []f32.Point{{X: 0, Y: 0}, {X: 1080, Y: 1920}, {X: 100, Y: 1500}} {
			back := p.ToScreen(p.FromScreen(pt))
			assert.InDelta(t, pt.X, back.X, 0.01)
			assert.InDelta(t, pt.Y, back.Y, 0.01)
		}
	}
}

func TestProjection_RotationIsClockwise(t *testing.T) {
	size := image.Pt(400, 400)
	flat := NewProjection(eiffel, 15, 0, size)
	east := flat.FromScreen(f32.Pt(300, 200))

	turned := NewProjection(eiffel, 15, 90, size)
	pt := turned.ToScreen(east)
	assert.InDelta(t, 200, pt.X, 0.01)
	assert.InDelta(t, 300, pt.Y, 0.01)
}

func TestProjection_WrapsAcrossAntimeridian(t *testing.T) {
	p := NewProjection(tiles.LatLng{Lat: 0, Lng: 179.9}, 10, 0, image.Pt(400, 400))
	pt := p.ToScreen(tiles.LatLng{Lat: 0, Lng: -179.9})
	assert.Greater(t, pt.X, float32(200))
	assert.Less(t, pt.X, float32(400))
}

func TestProjection_Coverage(t *testing.T) {
	assert.Equal(t, image.Pt(300, 400), NewProjection(eiffel, 3, 0, image.Pt(300, 400)).Coverage())
	assert.Equal(t, image.Pt(300, 400), NewProjection(eiffel, 3, 360, image.Pt(300, 400)).Coverage())
	assert.Equal(t, image.Pt(500, 500), NewProjection(eiffel, 3, 10, image.Pt(300, 400)).Coverage())
}

func TestNormalizeDegrees(t *testing.T) {
	assert.Equal(t, 315.0, normalizeDegrees(-45))
	assert.Equal(t, 10.0, normalizeDegrees(370))
	assert.Equal(t, 0.0, normalizeDegrees(0))
}
