package mapview

import (
	"image"
	"math"

	"gioui.org/f32"
	"github.com/olablt/gio-openmaps/tiles"
)

// Projection maps between geographic coordinates and screen pixels for one
// frame of the map. Rotation is in degrees, clockwise.
type Projection struct {
	Center   tiles.LatLng
	Zoom     int
	Rotation float64
	Size     image.Point

	worldX, worldY float64
}

func NewProjection(center tiles.LatLng, zoom int, rotation float64, size image.Point) Projection {
	wx, wy := tiles.CalculateWorldCoordinates(center, zoom)
	return Projection{
		Center:   center,
		Zoom:     zoom,
		Rotation: rotation,
		Size:     size,
		worldX:   wx,
		worldY:   wy,
	}
}

// CenterWorld returns the world pixel coordinates of the map center.
func (p Projection) CenterWorld() (float64, float64) {
	return p.worldX, p.worldY
}

// ToScreen returns the screen position of ll. Longitudes are taken on the
// copy of the world closest to the center.
func (p Projection) ToScreen(ll tiles.LatLng) f32.Point {
	wx, wy := tiles.CalculateWorldCoordinates(ll, p.Zoom)
	dx, dy := wx-p.worldX, wy-p.worldY

	world := float64(tiles.TileSize) * math.Exp2(float64(p.Zoom))
	if dx > world/2 {
		dx -= world
	} else if dx < -world/2 {
		dx += world
	}

	rx, ry := rotate(dx, dy, p.Rotation)
	return f32.Pt(
		float32(float64(p.Size.X)/2+rx),
		float32(float64(p.Size.Y)/2+ry),
	)
}

// FromScreen returns the coordinate under the screen point pt.
func (p Projection) FromScreen(pt f32.Point) tiles.LatLng {
	ux, uy := p.Unrotate(p.offset(pt))
	return tiles.WorldToLatLng(p.worldX+ux, p.worldY+uy, p.Zoom).Clamp()
}

// Unrotate turns a screen space vector into a world space one.
func (p Projection) Unrotate(dx, dy float64) (float64, float64) {
	return rotate(dx, dy, -p.Rotation)
}

func (p Projection) offset(pt f32.Point) (float64, float64) {
	return float64(pt.X) - float64(p.Size.X)/2, float64(pt.Y) - float64(p.Size.Y)/2
}

// Coverage returns the area, in screen pixels, the tiles must cover so a
// rotated map shows no gaps in the corners.
func (p Projection) Coverage() image.Point {
	if math.Mod(p.Rotation, 360) == 0 {
		return p.Size
	}
	d := int(math.Ceil(math.Hypot(float64(p.Size.X), float64(p.Size.Y))))
	return image.Pt(d, d)
}

// rotate turns (x, y) by deg degrees, clockwise on a y-down screen.
func rotate(x, y, deg float64) (float64, float64) {
	if deg == 0 {
		return x, y
	}
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return x*cos - y*sin, x*sin + y*cos
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
