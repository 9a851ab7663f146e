package field

import (
	"context"
	"math"

	"github.com/matzehuels/netposter/pkg/render/geometry"
)

// Proximity records, per grid point, the closest node within its halo and
// how close it is. A grid point no node reaches is unclaimed; there is no
// sentinel id.
type Proximity struct {
	W, H           int
	RatioX, RatioY float64
	Halo           float64 // render pixels beyond a node's radius

	ids     idStore
	claimed []uint64
	dist    []uint8
}

// ComputeProximity builds the proximity field for nodes on a canvas of
// canvasW×canvasH render pixels. halo is in render pixels. Each node only
// visits the grid points inside its radius plus halo, so the cost is
// O(nodes × halo area).
//
// A grid point is claimed by a node when no earlier node is strictly closer
// to it (distance to the node centre). Exact ties keep the first claim.
func ComputeProximity(ctx context.Context, nodes []geometry.Node, canvasW, canvasH int, halo float64, budget int, opts Options) (*Proximity, error) {
	gw, gh, _ := Grid(canvasW, canvasH, budget)
	p := &Proximity{
		W:       gw,
		H:       gh,
		RatioX:  float64(gw) / float64(max(1, canvasW)),
		RatioY:  float64(gh) / float64(max(1, canvasH)),
		Halo:    halo,
		ids:     newIDStore(len(nodes), gw*gh),
		claimed: make([]uint64, (gw*gh+63)/64),
		dist:    make([]uint8, gw*gh),
	}
	if len(nodes) == 0 {
		return p, nil
	}

	// Workers own whole grid rows, so best, ids and dist are written without
	// locks. The claimed bitset packs several rows per word and is filled
	// afterwards.
	inf := float32(math.Inf(1))
	best := make([]float32, gw*gh)
	for k := range best {
		best[k] = inf
	}
	err := rows(ctx, gh, opts, func(y0, y1 int) {
		for i := range nodes {
			n := &nodes[i]
			reach := n.R + halo
			ya := max(y0, int(math.Floor((n.Y-reach)*p.RatioY-0.5)))
			yb := min(y1-1, int(math.Ceil((n.Y+reach)*p.RatioY-0.5)))
			if ya > yb {
				continue
			}
			xa := max(0, int(math.Floor((n.X-reach)*p.RatioX-0.5)))
			xb := min(gw-1, int(math.Ceil((n.X+reach)*p.RatioX-0.5)))
			for y := ya; y <= yb; y++ {
				cy := (float64(y)+0.5)/p.RatioY - n.Y
				for x := xa; x <= xb; x++ {
					cx := (float64(x)+0.5)/p.RatioX - n.X
					d := math.Hypot(cx, cy)
					if d > reach {
						continue
					}
					k := y*gw + x
					if float32(d) >= best[k] {
						continue
					}
					best[k] = float32(d)
					p.ids.set(k, i)
					p.dist[k] = distanceByte(d, n.R, halo)
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	for k, d := range best {
		if d != inf {
			p.claimed[k>>6] |= 1 << (uint(k) & 63)
		}
	}
	return p, nil
}

// distanceByte is 0 inside the node radius, otherwise the distance beyond the
// radius mapped across the halo onto [1, 255]. Rounding up keeps 0 reserved
// for points inside the radius.
func distanceByte(d, r, halo float64) uint8 {
	if d <= r {
		return 0
	}
	v := math.Ceil(255 * (d - r) / halo)
	return uint8(math.Max(1, math.Min(255, v)))
}

func (p *Proximity) isClaimed(k int) bool {
	return p.claimed[k>>6]&(1<<(uint(k)&63)) != 0
}

// At returns the claim of grid point (x, y).
func (p *Proximity) At(x, y int) (id int, dist uint8, ok bool) {
	if x < 0 || y < 0 || x >= p.W || y >= p.H {
		return 0, 255, false
	}
	k := y*p.W + x
	if !p.isClaimed(k) {
		return 0, 255, false
	}
	return p.ids.get(k), p.dist[k], true
}

// Sample resamples the field at continuous render coordinates. The distance
// is interpolated bilinearly over the four surrounding grid points, with
// unclaimed points counting as the full halo distance. The id comes from the
// nearest of the four points.
func (p *Proximity) Sample(px, py float64) (id int, dist float64, ok bool) {
	gx := px*p.RatioX - 0.5
	gy := py*p.RatioY - 0.5
	x0 := int(math.Floor(gx))
	y0 := int(math.Floor(gy))
	tx := gx - float64(x0)
	ty := gy - float64(y0)

	d00 := p.normDist(x0, y0)
	d10 := p.normDist(x0+1, y0)
	d01 := p.normDist(x0, y0+1)
	d11 := p.normDist(x0+1, y0+1)
	top := d00 + (d10-d00)*tx
	bottom := d01 + (d11-d01)*tx
	dist = top + (bottom-top)*ty

	nx, ny := x0, y0
	if tx >= 0.5 {
		nx++
	}
	if ty >= 0.5 {
		ny++
	}
	id, _, ok = p.At(clampInt(nx, 0, p.W-1), clampInt(ny, 0, p.H-1))
	return id, dist, ok
}

func (p *Proximity) normDist(x, y int) float64 {
	_, d, ok := p.At(clampInt(x, 0, p.W-1), clampInt(y, 0, p.H-1))
	if !ok {
		return 1
	}
	return float64(d) / 255
}

// Claimed returns the number of claimed grid points.
func (p *Proximity) Claimed() int {
	n := 0
	for k := 0; k < p.W*p.H; k++ {
		if p.isClaimed(k) {
			n++
		}
	}
	return n
}
