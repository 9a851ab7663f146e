package nodes

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netposter/pkg/render/geometry"
	"github.com/matzehuels/netposter/pkg/render/raster"
)

// Label is a placed node label. X, Y is the baseline origin in canvas
// pixels.
type Label struct {
	Node int
	Text string
	X, Y float64
	Box  image.Rectangle
}

// Measurer reports the advance width, ascent and descent of a string.
type Measurer interface {
	Measure(s string) (w, ascent, descent float64)
}

// PlaceLabels places labels below their nodes, greedily in priority order.
// A node is labelled when it is flagged to be drawn or its radius is at
// least minR; a label overlapping an earlier one is dropped. At most
// maxCount labels are placed when maxCount > 0.
func PlaceLabels(nodes []geometry.Node, order []int, m Measurer, minR float64, maxCount int) []Label {
	var out []Label
	for _, i := range order {
		if maxCount > 0 && len(out) >= maxCount {
			break
		}
		n := &nodes[i]
		if n.Label == "" || (!n.Draw && n.R < minR) {
			continue
		}
		w, asc, desc := m.Measure(n.Label)
		x := math.Round(n.X - w/2)
		y := math.Round(n.Y + n.R + asc + 1)
		box := image.Rect(int(x)-1, int(y-asc)-1, int(math.Ceil(x+w))+1, int(math.Ceil(y+desc))+1)
		if overlapsAny(box, out) {
			continue
		}
		out = append(out, Label{Node: i, Text: n.Label, X: x, Y: y, Box: box})
	}
	return out
}

func overlapsAny(r image.Rectangle, labels []Label) bool {
	for _, l := range labels {
		if r.Overlaps(l.Box) {
			return true
		}
	}
	return false
}

// DrawLabels draws labels into dst, skipping those outside it.
func DrawLabels(dst *image.RGBA, labels []Label, t *raster.Text, c colorful.Color) {
	for _, l := range labels {
		if !l.Box.Overlaps(dst.Rect) {
			continue
		}
		t.Draw(dst, l.Text, l.X, l.Y, c, 1)
	}
}
