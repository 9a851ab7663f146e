// Package edges draws graph edges as stepped paths.
//
// Each edge is cut into segments of a fixed length, optionally bent into a
// circular arc. In high-quality mode every path vertex looks up the
// proximity field: where the path crosses the territory of a node that is
// neither of its endpoints, it fades with the claimed distance, so edges do
// not run over unrelated nodes. The per-vertex opacities are smoothed and
// each segment is drawn with the mean opacity of its two vertices.
//
// Paths are computed once per render in canvas coordinates; drawing a path
// into a tile only clips it.
package edges

import (
	"context"
	"image"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/netposter/pkg/render/geometry"
	"github.com/matzehuels/netposter/pkg/render/raster"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// smoothing is the 5-tap kernel applied to vertex opacities.
var smoothing = [5]float64{0.15, 0.25, 0.2, 0.25, 0.15}

// Sampler is the part of the proximity field the renderer reads.
type Sampler interface {
	Sample(px, py float64) (id int, dist float64, ok bool)
}

// Style holds the edge parameters in render pixels.
type Style struct {
	HighQuality   bool
	Thickness     float64
	Color         colorful.Color
	Opacity       float64
	SegmentLength float64
	Curvature     float64 // degrees
	Jitter        float64
	Seed          int64
}

// StyleFrom converts settings into a Style.
func StyleFrom(s settings.Settings) Style {
	return Style{
		HighQuality:   s.Edges.HighQuality,
		Thickness:     s.Px(s.Edges.Thickness),
		Color:         settings.ColorOr(s.Edges.Color, colorful.Color{R: 0.2, G: 0.2, B: 0.2}),
		Opacity:       s.Edges.Opacity,
		SegmentLength: math.Max(s.Px(s.Edges.SegmentLength), 0.5),
		Curvature:     s.Edges.Curvature,
		Jitter:        s.Px(s.Edges.Jitter),
		Seed:          s.Seed,
	}
}

// Path is the drawable form of one edge.
type Path struct {
	Edge    int
	X, Y    []float64
	Alpha   []float64 // smoothed vertex opacity
	Opacity float64   // edge opacity
	Bounds  image.Rectangle
}

// Segments returns the number of segments of the path.
func (p *Path) Segments() int { return len(p.X) - 1 }

// Trace computes the path of edge i. prox may be nil, in which case every
// vertex is fully opaque. It reports false for edges of zero length.
func Trace(l *geometry.Layout, i int, prox Sampler, st Style) (Path, bool) {
	e := l.Edges[i]
	a, b := l.Nodes[e.Source], l.Nodes[e.Target]
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return Path{}, false
	}
	ux, uy := dx/length, dy/length
	// perpendicular, to the left of the direction of travel
	wx, wy := -uy, ux

	theta := st.Curvature * math.Pi / 180
	curved := math.Abs(theta) > 1e-9
	arc := length
	var radius, h float64
	if curved {
		radius = length / 2 / math.Sin(theta)
		h = length / 2 / math.Tan(theta)
		arc = 2 * theta * radius
	}
	n := max(1, int(math.Ceil(arc/st.SegmentLength)))

	p := Path{
		Edge:    i,
		X:       make([]float64, n+1),
		Y:       make([]float64, n+1),
		Alpha:   make([]float64, n+1),
		Opacity: e.Opacity,
	}
	mx, my := (a.X+b.X)/2, (a.Y+b.Y)/2
	for k := 0; k <= n; k++ {
		t := float64(k) / float64(n)
		switch {
		case k == 0:
			p.X[k], p.Y[k] = a.X, a.Y
		case k == n:
			p.X[k], p.Y[k] = b.X, b.Y
		case curved:
			alpha := -theta + 2*theta*t
			lx := radius * math.Sin(alpha)
			ly := radius*math.Cos(alpha) - h
			p.X[k] = mx + ux*lx + wx*ly
			p.Y[k] = my + uy*lx + wy*ly
		default:
			p.X[k] = a.X + dx*t
			p.Y[k] = a.Y + dy*t
		}
	}

	raw := make([]float64, n+1)
	for k := range raw {
		raw[k] = 1
		if st.HighQuality && prox != nil {
			raw[k] = opacityAt(prox, p.X[k], p.Y[k], e.Source, e.Target)
		}
	}
	for k := range p.Alpha {
		var v float64
		for j, w := range smoothing {
			v += w * raw[min(n, max(0, k+j-2))]
		}
		p.Alpha[k] = math.Max(0, math.Min(1, v))
	}

	if st.Jitter > 0 && n > 1 {
		rng := rand.New(rand.NewSource(st.Seed*1_000_003 + int64(i)))
		for k := 1; k < n; k++ {
			off := (rng.Float64()*2 - 1) * st.Jitter
			p.X[k] += wx * off
			p.Y[k] += wy * off
		}
	}

	hw := st.Thickness/2 + 1
	minX, minY, maxX, maxY := p.X[0], p.Y[0], p.X[0], p.Y[0]
	for k := range p.X {
		minX, maxX = math.Min(minX, p.X[k]), math.Max(maxX, p.X[k])
		minY, maxY = math.Min(minY, p.Y[k]), math.Max(maxY, p.Y[k])
	}
	p.Bounds = image.Rect(
		int(math.Floor(minX-hw)), int(math.Floor(minY-hw)),
		int(math.Ceil(maxX+hw)), int(math.Ceil(maxY+hw)),
	)
	return p, true
}

// opacityAt is 1 where the vertex lies in the territory of an endpoint or of
// nobody, and otherwise rises from 0 at the heart of the foreign node to 1
// at the rim of its halo.
func opacityAt(prox Sampler, x, y float64, src, dst int) float64 {
	id, d, ok := prox.Sample(x, y)
	if !ok || id == src || id == dst {
		return 1
	}
	return 0.5 + 0.5*math.Cos(math.Pi-d*d*math.Pi)
}

// TraceAll computes the paths of every drawable edge, in edge order, on up
// to workers goroutines. Every edge has its own random stream, so the result
// does not depend on workers.
func TraceAll(ctx context.Context, l *geometry.Layout, prox Sampler, st Style, workers int) ([]Path, error) {
	const chunk = 256
	traced := make([]Path, len(l.Edges))
	ok := make([]bool, len(l.Edges))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for lo := 0; lo < len(l.Edges); lo += chunk {
		hi := min(lo+chunk, len(l.Edges))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				traced[i], ok[i] = Trace(l, i, prox, st)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths := traced[:0]
	for i, p := range traced {
		if ok[i] {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// Draw strokes paths into dst in order. Paths outside dst are skipped.
func Draw(dst *image.RGBA, paths []Path, st Style) {
	for i := range paths {
		p := &paths[i]
		if !p.Bounds.Overlaps(dst.Rect) {
			continue
		}
		for k := 0; k < p.Segments(); k++ {
			a := (p.Alpha[k] + p.Alpha[k+1]) / 2 * p.Opacity * st.Opacity
			raster.Segment(dst, p.X[k], p.Y[k], p.X[k+1], p.Y[k+1], st.Thickness, st.Color, a)
		}
	}
}
