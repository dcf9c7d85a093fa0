package tiles

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	placeholderBackground = color.RGBA{R: 229, G: 227, B: 223, A: 255}
	placeholderGrid       = color.RGBA{R: 200, G: 198, B: 194, A: 255}
	placeholderLabel      = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// LocalProvider draws a placeholder for any tile: a flat background, a
// border and the z/x/y address in the middle. It never fails.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (p *LocalProvider) GetTile(_ context.Context, tile Tile) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{placeholderBackground}, image.Point{}, draw.Src)

	borders := []image.Rectangle{
		image.Rect(0, 0, TileSize, 1),
		image.Rect(0, TileSize-1, TileSize, TileSize),
		image.Rect(0, 0, 1, TileSize),
		image.Rect(TileSize-1, 0, TileSize, TileSize),
	}
	for _, rect := range borders {
		draw.Draw(img, rect, &image.Uniform{placeholderGrid}, image.Point{}, draw.Src)
	}

	drawLabel(img, tile.Key())
	return img, nil
}

func drawLabel(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(placeholderLabel),
		Face: face,
	}
	width := d.MeasureString(text).Round()
	height := face.Metrics().Height.Round()
	d.Dot = fixed.Point26_6{
		X: fixed.I((TileSize - width) / 2),
		Y: fixed.I((TileSize + height) / 2),
	}
	d.DrawString(text)
}
