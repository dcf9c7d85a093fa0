package tiles

import (
	"fmt"
	"image"
	"math"
)

const (
	TileSize           = 256
	earthCircumference = 40075016.686 // meters at equator
	maxLatitude        = 85.05112878
)

// Tile represents a map tile coordinates
type Tile struct {
	X, Y, Zoom int
}

// Key returns the cache key of the tile, "z/x/y".
func (t Tile) Key() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}

// Wrap folds X back into the world so tiles west of -180 or east of 180
// address the real tile they repeat.
func (t Tile) Wrap() Tile {
	n := 1 << t.Zoom
	t.X = ((t.X % n) + n) % n
	return t
}

// Valid reports whether Y lies inside the world at the tile's zoom.
func (t Tile) Valid() bool {
	return t.Zoom >= 0 && t.Y >= 0 && t.Y < 1<<t.Zoom
}

// LatLng represents a geographical point
type LatLng struct {
	Lat, Lng float64
}

func (ll LatLng) String() string {
	return fmt.Sprintf("%.6f,%.6f", ll.Lat, ll.Lng)
}

// Clamp limits latitude to the mercator range and normalizes longitude to [-180, 180).
func (ll LatLng) Clamp() LatLng {
	ll.Lat = max(-maxLatitude, min(ll.Lat, maxLatitude))
	if ll.Lng >= -180 && ll.Lng < 180 {
		return ll
	}
	ll.Lng = math.Mod(ll.Lng+180, 360)
	if ll.Lng < 0 {
		ll.Lng += 360
	}
	ll.Lng -= 180
	return ll
}

// LatLngToTile converts geographical coordinates to tile coordinates
func LatLngToTile(ll LatLng, zoom int) Tile {
	x, y := CalculateWorldCoordinates(ll, zoom)
	return Tile{
		X:    int(math.Floor(x / TileSize)),
		Y:    int(math.Floor(y / TileSize)),
		Zoom: zoom,
	}
}

// TileToLatLng returns the north-west corner of the tile.
func TileToLatLng(tile Tile) LatLng {
	return WorldToLatLng(float64(tile.X*TileSize), float64(tile.Y*TileSize), tile.Zoom)
}

// CalculateWorldCoordinates converts geographical coordinates to world pixel coordinates at given zoom level
func CalculateWorldCoordinates(ll LatLng, zoom int) (float64, float64) {
	size := worldSize(zoom)
	latRad := max(-maxLatitude, min(ll.Lat, maxLatitude)) * math.Pi / 180
	worldX := size * (ll.Lng + 180) / 360
	worldY := size * (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	return worldX, worldY
}

// WorldToLatLng converts world pixel coordinates back to geographical coordinates
func WorldToLatLng(worldX, worldY float64, zoom int) LatLng {
	size := worldSize(zoom)
	lng := worldX/size*360 - 180
	latRad := math.Pi * (1 - 2*worldY/size)
	lat := 180 / math.Pi * math.Atan(math.Sinh(latRad))
	return LatLng{Lat: lat, Lng: lng}
}

// CalculateMetersPerPixel calculates the meters per pixel at a given latitude and zoom level
func CalculateMetersPerPixel(latitude float64, zoom int) float64 {
	return earthCircumference * math.Cos(latitude*math.Pi/180) / worldSize(zoom)
}

func worldSize(zoom int) float64 {
	return float64(TileSize) * math.Exp2(float64(zoom))
}

// CalculateVisibleTiles returns the tiles covering a screenSize area centered
// on center. X is left unwrapped so callers can position tiles that repeat
// across the antimeridian; rows outside the world are skipped.
func CalculateVisibleTiles(center LatLng, zoom int, screenSize image.Point) []Tile {
	cx, cy := CalculateWorldCoordinates(center, zoom)
	halfW := float64(screenSize.X) / 2
	halfH := float64(screenSize.Y) / 2

	startX := int(math.Floor((cx - halfW) / TileSize))
	endX := int(math.Floor((cx + halfW) / TileSize))
	startY := int(math.Floor((cy - halfH) / TileSize))
	endY := int(math.Floor((cy + halfH) / TileSize))

	visible := make([]Tile, 0, (endX-startX+1)*(endY-startY+1))
	for x := startX; x <= endX; x++ {
		for y := startY; y <= endY; y++ {
			tile := Tile{X: x, Y: y, Zoom: zoom}
			if !tile.Valid() {
				continue
			}
			visible = append(visible, tile)
		}
	}
	return visible
}
