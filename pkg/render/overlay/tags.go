package overlay

import (
	"cmp"
	"context"
	"image"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netposter/pkg/fonts"
	"github.com/matzehuels/netposter/pkg/render/raster"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// peakThreshold is the share of the field maximum a density peak needs to
// be labelled.
const peakThreshold = 0.2

// TagRegions labels dense regions of the graph with the tag most used by
// the nodes around them.
//
// The canvas is cut into square cells. In each cell the densest grid point
// is a candidate; it is kept when it is above the threshold and no
// neighbouring cell has a denser candidate. The label is the tag with the
// most events among nodes within one cell size of the peak.
type TagRegions struct {
	Regions []Region

	text    *raster.Text
	color   colorful.Color
	opacity float64
}

// Region is one labelled density peak.
type Region struct {
	X, Y    float64
	Tag     string
	Count   int
	Density float64
}

func (o *TagRegions) Name() string { return settings.OverlayTags }

func (o *TagRegions) Prepare(ctx context.Context, s Scene) error {
	*o = TagRegions{}
	cfg := s.Settings()
	o.color = settings.ColorOr(cfg.Overlay.Color, colorful.Color{})
	o.opacity = cfg.Overlay.Opacity

	face, err := fonts.NewFace(fonts.Bold, cfg.Overlay.FontSize, cfg.RenderDPI)
	if err != nil {
		return err
	}
	o.text = raster.NewText(face)

	events := s.Events()
	if len(events) == 0 {
		s.Logger().Warn("tag overlay has no events to label regions with")
		return nil
	}
	density, err := s.Density(ctx)
	if err != nil {
		return err
	}

	l := s.Layout()
	idx := make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		idx[n.ID] = i
	}
	tags := make([]map[string]int, len(l.Nodes))
	for _, e := range events {
		i, ok := idx[e.NodeID]
		if !ok {
			continue
		}
		if tags[i] == nil {
			tags[i] = map[string]int{}
		}
		for _, t := range e.Tags {
			tags[i][t]++
		}
	}

	cell := cfg.Px(cfg.Overlay.CellSize)
	peaks := findPeaks(density.W, density.H, density.RatioX, density.RatioY, density.Data, cell)
	for _, p := range peaks {
		counts := map[string]int{}
		for i, n := range l.Nodes {
			if tags[i] == nil || math.Hypot(n.X-p.X, n.Y-p.Y) > cell {
				continue
			}
			for t, c := range tags[i] {
				counts[t] += c
			}
		}
		tag, count := dominant(counts)
		if count == 0 {
			continue
		}
		p.Tag, p.Count = tag, count
		o.Regions = append(o.Regions, p)
	}
	s.Logger().Debug("tag regions", "peaks", len(peaks), "labelled", len(o.Regions))
	return nil
}

func (o *TagRegions) Draw(dst *image.RGBA, _ raster.Tile) {
	for _, r := range o.Regions {
		o.text.DrawCentered(dst, r.Tag, r.X, r.Y, o.color, o.opacity)
	}
}

// findPeaks returns the density peaks of a field with one candidate per
// cell of cellPx render pixels.
func findPeaks(w, h int, rx, ry float64, data []float32, cellPx float64) []Region {
	if len(data) == 0 || cellPx <= 0 {
		return nil
	}
	var top float32
	for _, v := range data {
		top = max(top, v)
	}
	if top <= 0 {
		return nil
	}

	cw := max(1, int(math.Round(cellPx*rx)))
	ch := max(1, int(math.Round(cellPx*ry)))
	nx, ny := (w+cw-1)/cw, (h+ch-1)/ch
	best := make([]int, nx*ny)
	for c := range best {
		best[c] = -1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := (y/ch)*nx + x/cw
			if k := y*w + x; best[c] < 0 || data[k] > data[best[c]] {
				best[c] = k
			}
		}
	}

	var out []Region
	for cy := 0; cy < ny; cy++ {
		for cx := 0; cx < nx; cx++ {
			k := best[cy*nx+cx]
			v := data[k]
			if v < peakThreshold*top || !isCellMax(best, data, nx, ny, cx, cy) {
				continue
			}
			gx, gy := k%w, k/w
			out = append(out, Region{
				X:       (float64(gx) + 0.5) / rx,
				Y:       (float64(gy) + 0.5) / ry,
				Density: float64(v),
			})
		}
	}
	return out
}

// isCellMax reports whether the candidate of cell (cx, cy) is at least as
// dense as those of its 8 neighbours, with ties going to the first cell in
// row order.
func isCellMax(best []int, data []float32, nx, ny, cx, cy int) bool {
	k := best[cy*nx+cx]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := cx+dx, cy+dy
			if (dx == 0 && dy == 0) || x < 0 || y < 0 || x >= nx || y >= ny {
				continue
			}
			o := best[y*nx+x]
			if data[o] > data[k] || (data[o] == data[k] && o < k) {
				return false
			}
		}
	}
	return true
}

// dominant returns the most frequent tag, breaking ties alphabetically.
func dominant(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(keys) == 0 {
		return "", 0
	}
	return keys[0], counts[keys[0]]
}
