package overlay

import (
	"context"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netposter/pkg/render/raster"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// minGridSpacing is the smallest line spacing, in render pixels, worth
// drawing.
const minGridSpacing = 2.0

// ClosenessGrid draws a square grid whose spacing is the connected-closeness
// threshold Δmax, anchored at the canvas centre. Two nodes in the same cell
// are roughly as close as a typical connected pair. Nothing is drawn when the
// estimate is inconclusive.
type ClosenessGrid struct {
	Spacing          float64 // 0 when disabled
	OriginX, OriginY float64

	color   colorful.Color
	opacity float64
	width   float64
}

func (o *ClosenessGrid) Name() string { return settings.OverlayCloseness }

func (o *ClosenessGrid) Prepare(ctx context.Context, s Scene) error {
	*o = ClosenessGrid{}
	cfg := s.Settings()
	o.color = settings.ColorOr(cfg.Overlay.Color, colorful.Color{})
	o.opacity = cfg.Overlay.Opacity
	o.width = math.Max(1, cfg.Px(0.2))

	res, err := s.Closeness(ctx)
	if err != nil {
		return err
	}
	if res.Inconclusive {
		s.Logger().Warn("closeness estimate inconclusive, grid overlay left empty",
			"reason", res.Reason, "c_max", res.CMax)
		return nil
	}
	if res.DeltaMax < minGridSpacing {
		s.Logger().Warn("closeness threshold too small for a grid", "delta_max", res.DeltaMax)
		return nil
	}
	l := s.Layout()
	o.Spacing = res.DeltaMax
	o.OriginX, o.OriginY = float64(l.Width)/2, float64(l.Height)/2
	s.Logger().Debug("closeness grid", "spacing_px", o.Spacing)
	return nil
}

func (o *ClosenessGrid) Draw(dst *image.RGBA, _ raster.Tile) {
	if o.Spacing <= 0 {
		return
	}
	b := dst.Rect
	x0, x1 := float64(b.Min.X), float64(b.Max.X)
	y0, y1 := float64(b.Min.Y), float64(b.Max.Y)
	pad := o.width

	for k := math.Ceil((x0 - pad - o.OriginX) / o.Spacing); ; k++ {
		x := o.OriginX + k*o.Spacing
		if x > x1+pad {
			break
		}
		raster.Segment(dst, x, y0-pad, x, y1+pad, o.width, o.color, o.opacity)
	}
	for k := math.Ceil((y0 - pad - o.OriginY) / o.Spacing); ; k++ {
		y := o.OriginY + k*o.Spacing
		if y > y1+pad {
			break
		}
		raster.Segment(dst, x0-pad, y, x1+pad, y, o.width, o.color, o.opacity)
	}
}
