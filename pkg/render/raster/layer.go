package raster

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Tile is one cell of the N×N tile grid.
type Tile struct {
	Col, Row int
	// Bounds is the tile's rectangle in canvas pixels.
	Bounds image.Rectangle
}

// Tiles splits a canvas of n·tw × n·th pixels into n×n tiles, row by row.
func Tiles(n, tw, th int) []Tile {
	out := make([]Tile, 0, n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			out = append(out, Tile{
				Col:    col,
				Row:    row,
				Bounds: image.Rect(col*tw, row*th, (col+1)*tw, (row+1)*th),
			})
		}
	}
	return out
}

// NewLayer returns a transparent layer covering t.
func NewLayer(t Tile) *image.RGBA {
	return image.NewRGBA(t.Bounds)
}

// Blend composites colour c with alpha a over the pixel (x, y) of dst.
// Pixels outside dst are ignored.
func Blend(dst *image.RGBA, x, y int, c colorful.Color, a float64) {
	if a <= 0 || !image.Pt(x, y).In(dst.Rect) {
		return
	}
	if a > 1 {
		a = 1
	}
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	inv := 1 - a
	p[0] = to8(c.R*a*255 + float64(p[0])*inv)
	p[1] = to8(c.G*a*255 + float64(p[1])*inv)
	p[2] = to8(c.B*a*255 + float64(p[2])*inv)
	p[3] = to8(a*255 + float64(p[3])*inv)
}

// Fill composites c with alpha a over every pixel of dst.
func Fill(dst *image.RGBA, c colorful.Color, a float64) {
	c = c.Clamped()
	b := dst.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			Blend(dst, x, y, c, a)
		}
	}
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
