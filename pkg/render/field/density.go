package field

import (
	"context"
	"math"

	"github.com/matzehuels/netposter/pkg/render/geometry"
)

// ComputeDensity accumulates the influence of every node at every grid
// point,
//
//	1 / (1 + (max(0, d-r)/spread)²)
//
// and divides the sum by the node count so graphs of different sizes stay
// comparable. spread is in render pixels. The cost is O(nodes × grid points),
// which is why the grid is bounded by budget.
//
// With no nodes the field is all zero.
func ComputeDensity(ctx context.Context, nodes []geometry.Node, canvasW, canvasH int, spread float64, budget int, opts Options) (*Field, error) {
	gw, gh, _ := Grid(canvasW, canvasH, budget)
	f := New(gw, gh, canvasW, canvasH)
	if len(nodes) == 0 {
		return f, nil
	}
	if spread <= 0 {
		spread = 1
	}
	norm := 1 / float64(len(nodes))

	err := rows(ctx, gh, opts, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			py := (float64(y) + 0.5) / f.RatioY
			row := f.Data[y*gw : (y+1)*gw]
			for x := range row {
				px := (float64(x) + 0.5) / f.RatioX
				var sum float64
				for i := range nodes {
					d := math.Hypot(px-nodes[i].X, py-nodes[i].Y) - nodes[i].R
					if d <= 0 {
						sum++
						continue
					}
					q := d / spread
					sum += 1 / (1 + q*q)
				}
				row[x] = float32(sum * norm)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}
