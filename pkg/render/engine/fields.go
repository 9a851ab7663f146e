package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/matzehuels/netposter/pkg/closeness"
	"github.com/matzehuels/netposter/pkg/observability"
	"github.com/matzehuels/netposter/pkg/render/edges"
	"github.com/matzehuels/netposter/pkg/render/field"
	"github.com/matzehuels/netposter/pkg/render/nodes"
)

// heatPercentile is the density percentile mapped to full heatmap opacity,
// so a few saturated node cores do not wash out the rest of the map.
const heatPercentile = 99

// Proximity returns the proximity field, computing it on first use.
func (r *Renderer) Proximity(ctx context.Context) (*field.Proximity, error) {
	return r.proximity.get(func() (*field.Proximity, error) {
		s := r.settings
		start := time.Now()
		r.logDownsample("proximity", s.Proximity.PixelBudget)
		p, err := field.ComputeProximity(ctx, r.layout.Nodes, r.layout.Width, r.layout.Height,
			s.Px(s.Proximity.HaloRange), s.Proximity.PixelBudget, r.fieldOptions("proximity"))
		if err != nil {
			return nil, err
		}
		r.fieldDone(ctx, "proximity", p.W, p.H, start)
		return p, nil
	})
}

// Density returns the density field, computing it on first use.
func (r *Renderer) Density(ctx context.Context) (*field.Field, error) {
	return r.density.get(func() (*field.Field, error) {
		s := r.settings
		start := time.Now()
		r.logDownsample("density", s.Heatmap.PixelBudget)
		f, err := field.ComputeDensity(ctx, r.layout.Nodes, r.layout.Width, r.layout.Height,
			s.Px(s.Heatmap.Spread), s.Heatmap.PixelBudget, r.fieldOptions("density"))
		if err != nil {
			return nil, err
		}
		r.fieldDone(ctx, "density", f.W, f.H, start)
		return f, nil
	})
}

// Relief returns the hillshade luminance field, computing it on first use.
func (r *Renderer) Relief(ctx context.Context) (*field.Field, error) {
	return r.relief.get(func() (*field.Field, error) {
		d, err := r.Density(ctx)
		if err != nil {
			return nil, err
		}
		s := r.settings.Relief
		start := time.Now()
		f, err := field.ComputeRelief(ctx, d, field.Sun{
			Azimuth:      s.Azimuth,
			Elevation:    s.Elevation,
			Exaggeration: s.Exaggeration,
		}, r.fieldOptions("relief"))
		if err != nil {
			return nil, err
		}
		r.fieldDone(ctx, "relief", f.W, f.H, start)
		return f, nil
	})
}

// Elevation returns the density field scaled into [0, 1].
func (r *Renderer) Elevation(ctx context.Context) (*field.Field, error) {
	return r.elevation.get(func() (*field.Field, error) {
		d, err := r.Density(ctx)
		if err != nil {
			return nil, err
		}
		return field.Elevation(d), nil
	})
}

// heatmapScale returns the density value drawn at full heatmap opacity.
func (r *Renderer) heatmapScale(ctx context.Context) (float64, error) {
	return r.heatScale.get(func() (float64, error) {
		d, err := r.Density(ctx)
		if err != nil {
			return 0, err
		}
		data := make(stats.Float64Data, 0, len(d.Data))
		for _, v := range d.Data {
			if v > 0 {
				data = append(data, float64(v))
			}
		}
		if len(data) == 0 {
			return 0, nil
		}
		p, err := stats.Percentile(data, heatPercentile)
		if err != nil {
			return 0, err
		}
		return p, nil
	})
}

// DrawOrder returns node indices in priority order; nodes are painted in
// reverse.
func (r *Renderer) DrawOrder() []int {
	order, _ := r.order.get(func() ([]int, error) {
		return nodes.Order(r.layout.Nodes), nil
	})
	return order
}

// Paths returns the edge paths. In high-quality mode they depend on the
// proximity field.
func (r *Renderer) Paths(ctx context.Context) ([]edges.Path, error) {
	return r.paths.get(func() ([]edges.Path, error) {
		var prox edges.Sampler
		st := edges.StyleFrom(r.settings)
		if st.HighQuality && len(r.layout.Edges) > 0 {
			p, err := r.Proximity(ctx)
			if err != nil {
				return nil, err
			}
			prox = p
		}
		start := time.Now()
		paths, err := edges.TraceAll(ctx, r.layout, prox, st, r.workers)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("edge paths traced", "paths", len(paths), "skipped", len(r.layout.Edges)-len(paths),
			"took", time.Since(start))
		return paths, nil
	})
}

// Labels returns the placed node labels.
func (r *Renderer) Labels() ([]nodes.Label, error) {
	return r.labels.get(func() ([]nodes.Label, error) {
		text, err := r.labelFace()
		if err != nil {
			return nil, err
		}
		s := r.settings
		return nodes.PlaceLabels(r.layout.Nodes, r.DrawOrder(), text, s.Px(s.Labels.MinSize), s.Labels.MaxCount), nil
	})
}

// Closeness returns the connected-closeness estimate of the normalised
// layout, in render pixels.
func (r *Renderer) Closeness(ctx context.Context) (closeness.Result, error) {
	return r.closeness.get(func() (closeness.Result, error) {
		start := time.Now()
		res, err := closeness.EstimateLayout(ctx, r.layout, closeness.OptionsFrom(r.settings))
		if err != nil {
			return res, err
		}
		if res.Inconclusive {
			r.logger.Warn("closeness estimate inconclusive", "reason", res.Reason, "c_max", res.CMax)
		} else {
			r.logger.Debug("closeness estimated", "delta_max", res.DeltaMax, "c_max", res.CMax,
				"iterations", res.Iterations, "took", time.Since(start))
		}
		return res, nil
	})
}

func (r *Renderer) fieldOptions(name string) field.Options {
	var last atomic.Int64
	return field.Options{
		Workers: r.workers,
		Progress: func(done, total int) {
			q := int64(done * 4 / max(1, total))
			if prev := last.Load(); q > prev && last.CompareAndSwap(prev, q) {
				r.logger.Debug("field progress", "field", name, "rows", done, "of", total)
			}
		},
	}
}

func (r *Renderer) logDownsample(name string, budget int) {
	w, h, ratio := field.Grid(r.layout.Width, r.layout.Height, budget)
	if ratio < 1 {
		r.logger.Warn("field downsampled to fit its pixel budget",
			"field", name, "ratio", ratio, "grid", [2]int{w, h}, "budget", budget)
	}
}

func (r *Renderer) fieldDone(ctx context.Context, name string, w, h int, start time.Time) {
	took := time.Since(start)
	r.logger.Debug("field computed", "field", name, "grid", [2]int{w, h}, "took", took)
	observability.Render().OnFieldComputed(ctx, r.id, name, w, h, took)
}
