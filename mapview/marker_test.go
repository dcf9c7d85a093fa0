package mapview

import (
	"image"
	"testing"

	"github.com/olablt/gio-openmaps/tiles"
	"github.com/stretchr/testify/assert"
)

func TestNewMarker(t *testing.T) {
	m := NewMarker(tiles.LatLng{Lat: 1, Lng: 2}, "Searched Location")
	assert.Equal(t, AnchorCenter, m.AnchorU)
	assert.Equal(t, AnchorBottom, m.AnchorV)

	m.SetAnchor(AnchorLeft, AnchorTop)
	assert.Equal(t, float32(0), m.AnchorU)
	assert.Equal(t, float32(0), m.AnchorV)
}

func TestDefaultIcon(t *testing.T) {
	img := DefaultIcon(40, pinColor)
	assert.Equal(t, image.Rect(0, 0, 30, 40), img.Bounds())

	// corners stay transparent
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 39).A)

	// body of the pin is solid
	body := img.RGBAAt(15, 32)
	assert.Equal(t, uint8(0xff), body.A)
	assert.Equal(t, pinColor.R, body.R)

	// with a white dot in the head
	head := img.RGBAAt(15, 15)
	assert.Equal(t, uint8(0xff), head.R)
	assert.Equal(t, uint8(0xff), head.G)
}

func TestDefaultIcon_MinimumSize(t *testing.T) {
	assert.Equal(t, image.Rect(0, 0, 6, 8), DefaultIcon(1, pinColor).Bounds())
}
