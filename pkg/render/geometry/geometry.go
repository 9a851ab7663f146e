// Package geometry maps an input graph from abstract layout units into
// raster space.
//
// [Normalize] guarantees every node has finite coordinates, a size and a
// colour, applies the configured flips and rotation, centres the graph on its
// unweighted centroid and scales it with a pinned ratio so that renders of
// different days with similar density stay visually comparable.
//
// Nodes without coordinates are scattered uniformly inside a disk of radius
// 5·sqrt(n) layout units. This is a visible fallback, not a layout.
package geometry

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netposter/pkg/graph"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// Node is a node in raster space. X, Y and R are render pixels of the full
// untiled canvas.
type Node struct {
	Index     int
	ID        string
	Label     string
	X, Y      float64
	R         float64
	Color     colorful.Color
	Important bool
	Draw      bool
	Daily     bool
}

// Edge references nodes by index into Layout.Nodes.
type Edge struct {
	Source, Target int
	Weight         float64
	Opacity        float64
	Daily          bool
}

// Layout is the normalised geometry of one graph.
type Layout struct {
	Nodes    []Node
	Edges    []Edge
	Directed bool

	Width, Height int // canvas size in render pixels

	// Scale and OffsetX/OffsetY describe the affine map applied after flips
	// and rotation: px = OffsetX + Scale·(x - centroidX).
	Scale            float64
	OffsetX, OffsetY float64
	CentroidX        float64
	CentroidY        float64

	// Repositioned counts nodes that received a fallback position.
	Repositioned int
	// Recolored counts nodes whose colour was missing or unparsable.
	Recolored int
}

// Empty reports whether there is nothing to draw.
func (l *Layout) Empty() bool { return len(l.Nodes) == 0 }

// Normalize converts g into raster space. g is read only; the engine passes
// its private clone. A graph without nodes yields an empty layout, not an
// error.
func Normalize(g *graph.Graph, s settings.Settings) *Layout {
	w, h := s.CanvasSize()
	l := &Layout{Width: w, Height: h, Directed: g.Directed}
	if len(g.Nodes) == 0 {
		return l
	}

	fallback := settings.ColorOr(s.Geometry.DefaultColor, colorful.Color{R: 0.6, G: 0.6, B: 0.6})
	rng := rand.New(rand.NewSource(s.Seed))
	spread := 5 * math.Sqrt(float64(len(g.Nodes)))

	xs := make([]float64, len(g.Nodes))
	ys := make([]float64, len(g.Nodes))
	l.Nodes = make([]Node, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.HasPosition() {
			xs[i], ys[i] = *n.X, *n.Y
		} else {
			xs[i], ys[i] = diskSample(rng)
			xs[i] *= spread
			ys[i] *= spread
			l.Repositioned++
		}
		size := 1.0
		if n.HasSize() {
			size = math.Abs(*n.Size)
		}
		c, err := settings.ParseColor(n.Color)
		if err != nil {
			c = fallback
			l.Recolored++
		}
		l.Nodes[i] = Node{
			Index:     i,
			ID:        n.ID,
			Label:     n.DisplayLabel(),
			R:         size,
			Color:     c,
			Important: n.Flags.Important,
			Draw:      n.Flags.Draw,
			Daily:     n.Flags.Daily,
		}
	}

	orient(xs, ys, s.Geometry)
	l.CentroidX, l.CentroidY = centroid(xs, ys)
	l.Scale = scaleRatio(xs, ys, l, s)

	left, right := s.Px(s.Geometry.MarginLeft), s.Px(s.Geometry.MarginRight)
	top, bottom := s.Px(s.Geometry.MarginTop), s.Px(s.Geometry.MarginBottom)
	l.OffsetX = left + (float64(w)-left-right)/2
	l.OffsetY = top + (float64(h)-top-bottom)/2

	for i := range l.Nodes {
		l.Nodes[i].X = l.OffsetX + l.Scale*(xs[i]-l.CentroidX)
		l.Nodes[i].Y = l.OffsetY + l.Scale*(ys[i]-l.CentroidY)
		l.Nodes[i].R *= l.Scale
	}

	idx := g.NodeIndex()
	l.Edges = make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		src, ok1 := idx[e.Source]
		dst, ok2 := idx[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		weight := 1.0
		if e.Weight != nil && !math.IsNaN(*e.Weight) {
			weight = *e.Weight
		}
		l.Edges = append(l.Edges, Edge{
			Source:  src,
			Target:  dst,
			Weight:  weight,
			Opacity: e.EdgeOpacity(),
			Daily:   e.Daily,
		})
	}
	return l
}

// diskSample draws a point uniformly inside the unit disk by rejection.
func diskSample(rng *rand.Rand) (float64, float64) {
	for {
		x := 2*rng.Float64() - 1
		y := 2*rng.Float64() - 1
		if x*x+y*y <= 1 {
			return x, y
		}
	}
}

// orient applies flips, then rotation about the origin.
func orient(xs, ys []float64, g settings.Geometry) {
	theta := g.Rotate * math.Pi / 180
	for i := range xs {
		if g.FlipX {
			xs[i] = -xs[i]
		}
		if g.FlipY {
			ys[i] = -ys[i]
		}
		if theta != 0 {
			r := math.Hypot(xs[i], ys[i])
			phi := math.Atan2(ys[i], xs[i]) + theta
			xs[i], ys[i] = r*math.Cos(phi), r*math.Sin(phi)
		}
	}
}

func centroid(xs, ys []float64) (float64, float64) {
	var sx, sy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
	}
	n := float64(len(xs))
	return sx / n, sy / n
}

// scaleRatio returns render pixels per layout unit. The pinned ratio is the
// default; FitToExtent fits the node extent, radii included, into the area
// inside the margins.
func scaleRatio(xs, ys []float64, l *Layout, s settings.Settings) float64 {
	pinned := s.Px(s.Geometry.ScaleRatio)
	if !s.Geometry.FitToExtent {
		return pinned
	}
	var rx, ry float64
	for i := range xs {
		rx = math.Max(rx, math.Abs(xs[i]-l.CentroidX)+l.Nodes[i].R)
		ry = math.Max(ry, math.Abs(ys[i]-l.CentroidY)+l.Nodes[i].R)
	}
	if rx == 0 || ry == 0 {
		return pinned
	}
	availW := s.Px(s.Width - s.Geometry.MarginLeft - s.Geometry.MarginRight)
	availH := s.Px(s.Height - s.Geometry.MarginTop - s.Geometry.MarginBottom)
	return math.Min(availW/2/rx, availH/2/ry)
}
