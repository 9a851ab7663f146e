package engine

import (
	"context"
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netposter/pkg/fonts"
	"github.com/matzehuels/netposter/pkg/render/edges"
	"github.com/matzehuels/netposter/pkg/render/field"
	"github.com/matzehuels/netposter/pkg/render/nodes"
	"github.com/matzehuels/netposter/pkg/render/raster"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// Layer names, bottom to top. The background is painted by the compositor
// itself.
const (
	LayerBackground  = "background"
	LayerHeatmap     = "heatmap"
	LayerHypsometric = "hypsometric"
	LayerRelief      = "relief"
	LayerEdges       = "edges"
	LayerShadows     = "shadows"
	LayerNodes       = "nodes"
	LayerOverlay     = "overlay"
	LayerLabels      = "labels"
)

// layer draws one layer of one tile. Layers only read state that was
// prepared beforehand, so the layers of a tile can be drawn concurrently.
type layer struct {
	name string
	draw func(dst *image.RGBA, t raster.Tile)
}

// layers prepares everything the enabled layers need and returns them in
// compositing order.
func (r *Renderer) layers(ctx context.Context) ([]layer, error) {
	s := r.settings
	var out []layer

	if s.Heatmap.Enabled {
		d, err := r.Density(ctx)
		if err != nil {
			return nil, err
		}
		scale, err := r.heatmapScale(ctx)
		if err != nil {
			return nil, err
		}
		c := settings.ColorOr(s.Heatmap.Color, colorful.Color{R: 0.9, G: 0.6, B: 0.2})
		out = append(out, layer{LayerHeatmap, func(dst *image.RGBA, _ raster.Tile) {
			drawHeatmap(dst, d, scale, c, s.Heatmap.Opacity)
		}})
	}

	if s.Relief.Enabled && s.Relief.Hypsometric {
		e, err := r.Elevation(ctx)
		if err != nil {
			return nil, err
		}
		palette := hypsoPalette(s.Relief.HypsoColors, s.Relief.HypsoBands)
		out = append(out, layer{LayerHypsometric, func(dst *image.RGBA, _ raster.Tile) {
			drawHypsometric(dst, e, palette, s.Relief.HypsoOpacity)
		}})
	}

	if s.Relief.Enabled {
		rf, err := r.Relief(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, layer{LayerRelief, func(dst *image.RGBA, _ raster.Tile) {
			drawRelief(dst, rf, s.Relief.Strength)
		}})
	}

	if s.Edges.Enabled && len(r.layout.Edges) > 0 {
		paths, err := r.Paths(ctx)
		if err != nil {
			return nil, err
		}
		st := edges.StyleFrom(s)
		out = append(out, layer{LayerEdges, func(dst *image.RGBA, _ raster.Tile) {
			edges.Draw(dst, paths, st)
		}})
	}

	if s.Nodes.Enabled && !r.layout.Empty() {
		order := r.DrawOrder()
		st := nodes.StyleFrom(s)
		canvas := image.Rect(0, 0, r.layout.Width, r.layout.Height)
		if st.Halo.Enabled {
			out = append(out, layer{LayerShadows, func(dst *image.RGBA, _ raster.Tile) {
				nodes.Shadow(dst, canvas, r.layout.Nodes, order, st.Halo)
			}})
		}
		out = append(out, layer{LayerNodes, func(dst *image.RGBA, _ raster.Tile) {
			nodes.Draw(dst, r.layout.Nodes, order, st)
		}})
	}

	if r.overlay != nil {
		if _, err := r.prepared.get(func() (struct{}, error) {
			return struct{}{}, r.overlay.Prepare(ctx, r)
		}); err != nil {
			return nil, err
		}
		out = append(out, layer{LayerOverlay, r.overlay.Draw})
	}

	if s.Labels.Enabled && !r.layout.Empty() {
		labels, err := r.Labels()
		if err != nil {
			return nil, err
		}
		text, err := r.labelFace()
		if err != nil {
			return nil, err
		}
		c := settings.ColorOr(s.Labels.Color, colorful.Color{})
		out = append(out, layer{LayerLabels, func(dst *image.RGBA, _ raster.Tile) {
			nodes.DrawLabels(dst, labels, text, c)
		}})
	}
	return out, nil
}

func (r *Renderer) labelFace() (*raster.Text, error) {
	return r.labelText.get(func() (*raster.Text, error) {
		face, err := fonts.NewFace(fonts.Regular, r.settings.Labels.FontSize, r.settings.RenderDPI)
		if err != nil {
			return nil, err
		}
		return raster.NewText(face), nil
	})
}

func drawHeatmap(dst *image.RGBA, d *field.Field, scale float64, c colorful.Color, opacity float64) {
	if scale <= 0 {
		return
	}
	eachPixel(dst, func(x, y int, px, py float64) {
		v := d.Sample(px, py) / scale
		raster.Blend(dst, x, y, c, opacity*min(1, v))
	})
}

func drawHypsometric(dst *image.RGBA, e *field.Field, palette []colorful.Color, opacity float64) {
	if len(palette) == 0 {
		return
	}
	eachPixel(dst, func(x, y int, px, py float64) {
		b := field.Band(e.Sample(px, py), len(palette))
		raster.Blend(dst, x, y, palette[b], opacity)
	})
}

func drawRelief(dst *image.RGBA, rf *field.Field, strength float64) {
	black := colorful.Color{}
	eachPixel(dst, func(x, y int, px, py float64) {
		raster.Blend(dst, x, y, black, strength*(1-rf.Sample(px, py)))
	})
}

// eachPixel calls fn for every pixel of dst with the canvas coordinates of
// its centre.
func eachPixel(dst *image.RGBA, fn func(x, y int, px, py float64)) {
	b := dst.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			fn(x, y, float64(x)+0.5, float64(y)+0.5)
		}
	}
}

// hypsoPalette spreads n band colours over the configured gradient stops.
func hypsoPalette(stops []string, n int) []colorful.Color {
	var cs []colorful.Color
	for _, s := range stops {
		if c, err := settings.ParseColor(s); err == nil {
			cs = append(cs, c)
		}
	}
	if len(cs) == 0 || n <= 0 {
		return nil
	}
	if len(cs) == 1 || n == 1 {
		out := make([]colorful.Color, n)
		for i := range out {
			out[i] = cs[0]
		}
		return out
	}
	out := make([]colorful.Color, n)
	for i := range out {
		t := float64(i) / float64(n-1) * float64(len(cs)-1)
		k := min(int(t), len(cs)-2)
		out[i] = cs[k].BlendLab(cs[k+1], t-float64(k)).Clamped()
	}
	return out
}
