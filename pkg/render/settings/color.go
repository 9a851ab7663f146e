package settings

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses "#rgb" or "#rrggbb" colours.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	return colorful.Hex(strings.ToLower(s))
}

// ColorOr parses s and returns fallback when s is empty or invalid.
func ColorOr(s string, fallback colorful.Color) colorful.Color {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// RGBA converts c to a premultiplied colour with alpha a in [0, 1].
func RGBA(c colorful.Color, a float64) color.RGBA {
	c = c.Clamped()
	a = clamp01(a)
	return color.RGBA{
		R: uint8(c.R*a*255 + 0.5),
		G: uint8(c.G*a*255 + 0.5),
		B: uint8(c.B*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
