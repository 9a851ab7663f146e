// Package closeness estimates the connected-closeness of a drawn graph: the
// distance Δ at which "connected" node pairs most outnumber merely "close"
// ones.
//
// For a threshold Δ let E(Δ) be the fraction of edges shorter than Δ and
// P(Δ) the fraction of randomly sampled node pairs shorter than Δ. The
// estimator searches for the maximum of C(Δ) = E(Δ) − P(Δ) with a refining
// grid search and reports Δmax, the smallest evaluated Δ whose C lies within
// epsilon of the maximum. A maximum below MinC means the layout does not
// place connected nodes noticeably closer than random ones, and the result
// is inconclusive.
package closeness

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/matzehuels/netposter/pkg/render/geometry"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// Point is a node position.
type Point struct{ X, Y float64 }

// Pair is an edge between two point indices.
type Pair struct{ A, B int }

// Options configures the estimator.
type Options struct {
	GridSize int
	Epsilon  float64
	MinC     float64
	MaxIter  int
	Seed     int64
	Directed bool
}

// OptionsFrom converts settings into Options.
func OptionsFrom(s settings.Settings) Options {
	return Options{
		GridSize: s.Closeness.GridSize,
		Epsilon:  s.Closeness.Epsilon,
		MinC:     s.Closeness.MinC,
		MaxIter:  s.Closeness.MaxIter,
		Seed:     s.Seed,
	}
}

func (o *Options) setDefaults() {
	if o.GridSize < 2 {
		o.GridSize = 10
	}
	if o.Epsilon <= 0 {
		o.Epsilon = 0.03
	}
	if o.MinC <= 0 {
		o.MinC = 0.1
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 100
	}
}

// Sample is one evaluation of the metric.
type Sample struct {
	Delta float64
	C     float64
	E     float64
	P     float64
}

// Result is the outcome of an estimate. When Inconclusive is set, DeltaMax
// must not be used to derive anything.
type Result struct {
	Inconclusive bool
	Reason       string

	DeltaMax float64
	CMax     float64
	E, P     float64 // fractions at DeltaMax

	Iterations  int
	MaxDistance float64
	Edges       int
	Pairs       int

	// Samples holds every evaluated point, sorted by Delta.
	Samples []Sample
}

// Estimate runs the estimator on points and edges.
func Estimate(ctx context.Context, pts []Point, edges []Pair, opts Options) (Result, error) {
	opts.setDefaults()
	res := Result{Edges: len(edges)}
	switch {
	case len(pts) < 2:
		return inconclusive(res, "fewer than two nodes"), nil
	case len(edges) == 0:
		return inconclusive(res, "no edges"), nil
	}

	edgeDist := make([]float64, len(edges))
	for i, e := range edges {
		edgeDist[i] = dist(pts[e.A], pts[e.B])
	}
	pairs := samplePairs(len(pts), len(edges), opts)
	pairDist := make([]float64, len(pairs))
	for i, p := range pairs {
		pairDist[i] = dist(pts[p.A], pts[p.B])
	}
	res.Pairs = len(pairs)
	sort.Float64s(edgeDist)
	sort.Float64s(pairDist)

	maxD, err := stats.Max(append(append([]float64(nil), edgeDist...), pairDist...))
	if err != nil {
		return res, err
	}
	res.MaxDistance = maxD
	if maxD == 0 {
		return inconclusive(res, "all nodes coincide"), nil
	}

	eval := func(d float64) Sample {
		e := fraction(edgeDist, d)
		p := fraction(pairDist, d)
		return Sample{Delta: d, C: e - p, E: e, P: p}
	}

	lo, hi := 0.0, maxD
	cmax := math.Inf(-1)
	for iter := 1; iter <= opts.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Iterations = iter
		step := (hi - lo) / float64(opts.GridSize)
		best, bestC := 0, math.Inf(-1)
		for k := 0; k <= opts.GridSize; k++ {
			s := eval(lo + float64(k)*step)
			res.Samples = append(res.Samples, s)
			if s.C > bestC {
				best, bestC = k, s.C
			}
		}
		prev := cmax
		cmax = math.Max(cmax, bestC)
		lo, hi = lo+float64(max(0, best-1))*step, lo+float64(min(opts.GridSize, best+1))*step
		if iter > 1 && math.Abs(cmax-prev) <= opts.Epsilon/10*math.Abs(cmax) {
			break
		}
		if step == 0 {
			break
		}
	}

	sort.SliceStable(res.Samples, func(i, j int) bool { return res.Samples[i].Delta < res.Samples[j].Delta })
	res.CMax = cmax
	for _, s := range res.Samples {
		if s.C >= cmax-opts.Epsilon {
			res.DeltaMax, res.E, res.P = s.Delta, s.E, s.P
			break
		}
	}
	if cmax < opts.MinC {
		return inconclusive(res, "maximum below threshold"), nil
	}
	return res, nil
}

// EstimateLayout runs the estimator on a normalised layout, in render
// pixels.
func EstimateLayout(ctx context.Context, l *geometry.Layout, opts Options) (Result, error) {
	pts := make([]Point, len(l.Nodes))
	for i, n := range l.Nodes {
		pts[i] = Point{n.X, n.Y}
	}
	edges := make([]Pair, len(l.Edges))
	for i, e := range l.Edges {
		edges[i] = Pair{e.Source, e.Target}
	}
	opts.Directed = l.Directed
	return Estimate(ctx, pts, edges, opts)
}

func inconclusive(r Result, reason string) Result {
	r.Inconclusive = true
	r.Reason = reason
	return r
}

// samplePairs draws want distinct node pairs. For undirected graphs (a, b)
// and (b, a) are the same pair. When want reaches the number of possible
// pairs, every pair is returned.
func samplePairs(n, want int, opts Options) []Pair {
	possible := n * (n - 1)
	if !opts.Directed {
		possible /= 2
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	if 2*want >= possible {
		all := make([]Pair, 0, possible)
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				if a == b || (!opts.Directed && b < a) {
					continue
				}
				all = append(all, Pair{a, b})
			}
		}
		if want >= possible {
			return all
		}
		rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
		return all[:want]
	}

	seen := make(map[Pair]struct{}, want)
	out := make([]Pair, 0, want)
	for len(out) < want {
		a, b := rng.Intn(n), rng.Intn(n)
		if a == b {
			continue
		}
		if !opts.Directed && b < a {
			a, b = b, a
		}
		p := Pair{a, b}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// fraction returns the share of sorted values strictly below d.
func fraction(sorted []float64, d float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return float64(sort.SearchFloat64s(sorted, d)) / float64(len(sorted))
}

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
