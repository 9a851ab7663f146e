package nodes

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netposter/pkg/render/geometry"
	"github.com/matzehuels/netposter/pkg/render/raster"
)

var white = colorful.Color{R: 1, G: 1, B: 1}

// Shadow draws the node halo into dst, a layer of one tile of canvas.
//
// The rings are painted opaquely onto white, the buffer is blurred, and the
// result is turned into a shadow whose opacity is the darkness of the
// blurred buffer times the halo strength. The buffer extends past the tile
// by the blur's reach, so neighbouring tiles produce matching shadows.
func Shadow(dst *image.RGBA, canvas image.Rectangle, nodes []geometry.Node, order []int, h Halo) {
	if !h.Enabled || h.Rings <= 0 || h.Strength <= 0 {
		return
	}
	reach := raster.BlurReach(h.Sigma)
	pad := dst.Rect.Inset(-reach).Intersect(canvas)
	if pad.Empty() {
		return
	}
	buf := image.NewRGBA(pad)
	raster.Fill(buf, white, 1)

	extent := float64(h.Rings) * h.Step
	for k := len(order) - 1; k >= 0; k-- {
		n := &nodes[order[k]]
		if !touches(pad, n.X, n.Y, n.R+extent) {
			continue
		}
		base := tint(n.Color)
		for ring := h.Rings; ring >= 1; ring-- {
			t := float64(ring) / float64(h.Rings+1)
			raster.Disk(buf, n.X, n.Y, n.R+float64(ring)*h.Step, base.BlendLab(white, t).Clamped(), 1)
		}
		raster.Disk(buf, n.X, n.Y, n.R, base, 1)
	}
	raster.Blur(buf, h.Sigma)

	b := dst.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := buf.RGBAAt(x, y)
			c := colorful.Color{R: float64(p.R) / 255, G: float64(p.G) / 255, B: float64(p.B) / 255}
			lum := 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
			if a := h.Strength * (1 - lum); a > 0 {
				raster.Blend(dst, x, y, shade(c), a)
			}
		}
	}
}

// tint is the hue-preserving, slightly muted base colour of a node shadow.
func tint(c colorful.Color) colorful.Color {
	h, s, l := c.Hsl()
	return colorful.Hsl(h, s*0.8, l*0.85).Clamped()
}

func shade(c colorful.Color) colorful.Color {
	h, ch, l := c.Hcl()
	return colorful.Hcl(h, ch, l*0.5).Clamped()
}
