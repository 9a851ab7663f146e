// Package nodes draws node markers, their shadow halo and their labels.
//
// Nodes are painted back to front in the reverse of [Order], so the node
// that sorts first ends up on top. Each marker is a stroke-coloured disk
// under a smaller fill-coloured disk, which reads as a ring without a
// separate stroke pass.
package nodes

import (
	"cmp"
	"image"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netposter/pkg/render/geometry"
	"github.com/matzehuels/netposter/pkg/render/raster"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// Style holds node parameters in render pixels.
type Style struct {
	StrokeWidth float64
	// StrokeColor is used for every node unless DeriveStroke is set, in
	// which case each node's stroke is a darker shade of its fill.
	StrokeColor  colorful.Color
	DeriveStroke bool
	Halo         Halo
}

// Halo is the shadow configuration in render pixels.
type Halo struct {
	Enabled  bool
	Rings    int
	Step     float64
	Strength float64
	Sigma    float64
}

// StyleFrom converts settings into a Style.
func StyleFrom(s settings.Settings) Style {
	st := Style{
		StrokeWidth: s.Px(s.Nodes.StrokeWidth),
		Halo: Halo{
			Enabled:  s.Nodes.Halo.Enabled,
			Rings:    s.Nodes.Halo.Rings,
			Step:     s.Px(s.Nodes.Halo.Step),
			Strength: s.Nodes.Halo.Strength,
			Sigma:    s.Px(s.Nodes.Halo.Blur),
		},
	}
	c, err := settings.ParseColor(s.Nodes.StrokeColor)
	if err != nil {
		st.DeriveStroke = true
	} else {
		st.StrokeColor = c
	}
	return st
}

// Order returns node indices in priority order: important nodes first, then
// by descending radius, then by descending x. Remaining ties keep index
// order, so the result is fully deterministic.
func Order(nodes []geometry.Node) []int {
	idx := make([]int, len(nodes))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		na, nb := &nodes[a], &nodes[b]
		if na.Important != nb.Important {
			if na.Important {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(nb.R, na.R); c != 0 {
			return c
		}
		if c := cmp.Compare(nb.X, na.X); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return idx
}

// Draw paints the markers of nodes into dst, back to front.
func Draw(dst *image.RGBA, nodes []geometry.Node, order []int, st Style) {
	hw := st.StrokeWidth / 2
	for k := len(order) - 1; k >= 0; k-- {
		n := &nodes[order[k]]
		outer := n.R + hw
		if !touches(dst.Rect, n.X, n.Y, outer) {
			continue
		}
		stroke := st.StrokeColor
		if st.DeriveStroke {
			stroke = darker(n.Color)
		}
		if hw > 0 {
			raster.Disk(dst, n.X, n.Y, outer, stroke, 1)
		}
		raster.Disk(dst, n.X, n.Y, n.R-hw, n.Color, 1)
	}
}

func darker(c colorful.Color) colorful.Color {
	h, ch, l := c.Hcl()
	return colorful.Hcl(h, ch, l*0.7).Clamped()
}

func touches(r image.Rectangle, x, y, radius float64) bool {
	return x+radius+1 >= float64(r.Min.X) && x-radius-1 <= float64(r.Max.X) &&
		y+radius+1 >= float64(r.Min.Y) && y-radius-1 <= float64(r.Max.Y)
}
