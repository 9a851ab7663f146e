package raster

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Text draws strings with one face. The baseline origin of every string is
// rounded to a whole canvas pixel so glyphs rasterize identically in every
// tile.
type Text struct {
	mu   sync.Mutex
	face font.Face
}

// NewText returns a Text drawing with face.
func NewText(face font.Face) *Text {
	return &Text{face: face}
}

// Measure returns the advance width and the ascent and descent of s in
// pixels.
func (t *Text) Measure(s string) (w, ascent, descent float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	adv := font.MeasureString(t.face, s)
	m := t.face.Metrics()
	return fix(adv), fix(m.Ascent), fix(m.Descent)
}

// Draw draws s with its baseline starting at (x, y).
func (t *Text) Draw(dst *image.RGBA, s string, x, y float64, c colorful.Color, a float64) {
	if a <= 0 || s == "" {
		return
	}
	r, g, b := c.Clamped().RGB255()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.NRGBA{R: r, G: g, B: b, A: to8(a * 255)}),
		Face: t.face,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(y))),
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	d.DrawString(s)
}

// DrawCentered draws s centred on (cx, cy).
func (t *Text) DrawCentered(dst *image.RGBA, s string, cx, cy float64, c colorful.Color, a float64) {
	w, asc, desc := t.Measure(s)
	t.Draw(dst, s, cx-w/2, cy+(asc-desc)/2, c, a)
}

func fix(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
