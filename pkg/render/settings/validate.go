package settings

import (
	"math"

	"github.com/matzehuels/netposter/pkg/errors"
)

var validResample = map[string]bool{
	ResampleBilinear:   true,
	ResampleCatmullRom: true,
	ResampleLanczos:    true,
}

var validOverlay = map[string]bool{
	OverlayNone:      true,
	OverlayTags:      true,
	OverlayCloseness: true,
	OverlayProximity: true,
}

// Validate checks the invariants the engine relies on.
func (s *Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return invalid("image size must be positive, got %gx%g mm", s.Width, s.Height)
	}
	if s.RenderDPI <= 0 || s.OutputDPI <= 0 {
		return invalid("dpi must be positive, got render=%g output=%g", s.RenderDPI, s.OutputDPI)
	}
	if s.Tiles < 1 {
		return invalid("tiles must be >= 1, got %d", s.Tiles)
	}
	if !divisible(s.Width, s.Tiles) || !divisible(s.Height, s.Tiles) {
		return invalid("size %gx%g mm is not divisible by tile factor %d", s.Width, s.Height, s.Tiles)
	}
	if cw, ch := s.CanvasSize(); cw%s.Tiles != 0 || ch%s.Tiles != 0 {
		return invalid("canvas %dx%d px at %g dpi is not divisible by tile factor %d", cw, ch, s.RenderDPI, s.Tiles)
	}
	if ow, oh := s.OutputSize(); ow%s.Tiles != 0 || oh%s.Tiles != 0 {
		return invalid("output %dx%d px at %g dpi is not divisible by tile factor %d", ow, oh, s.OutputDPI, s.Tiles)
	}
	if tw, th := s.TileSize(); tw < 1 || th < 1 {
		return invalid("tile is smaller than one pixel at %g dpi", s.RenderDPI)
	}
	if !validResample[s.Resample] {
		return invalid("unknown resample filter %q (must be bilinear, catmullrom or lanczos)", s.Resample)
	}
	if !validOverlay[s.Overlay.Kind] {
		return invalid("unknown overlay %q (must be tags, closeness or proximity)", s.Overlay.Kind)
	}

	g := s.Geometry
	if g.ScaleRatio <= 0 && !g.FitToExtent {
		return invalid("geometry.scale_ratio must be positive, got %g", g.ScaleRatio)
	}
	if g.MarginLeft+g.MarginRight >= s.Width || g.MarginTop+g.MarginBottom >= s.Height {
		return invalid("margins leave no drawable area")
	}

	if s.Heatmap.Spread <= 0 {
		return invalid("heatmap.spread must be positive, got %g", s.Heatmap.Spread)
	}
	if s.Heatmap.PixelBudget < 1 || s.Proximity.PixelBudget < 1 {
		return invalid("pixel budgets must be positive")
	}
	if s.Proximity.HaloRange <= 0 {
		return invalid("proximity.halo_range must be positive, got %g", s.Proximity.HaloRange)
	}
	if s.Relief.Elevation < 0 || s.Relief.Elevation > 90 {
		return invalid("relief.elevation must be within [0, 90], got %g", s.Relief.Elevation)
	}
	if s.Relief.Hypsometric && (s.Relief.HypsoBands < 1 || len(s.Relief.HypsoColors) == 0) {
		return invalid("hypsometric tint needs at least one band and one colour")
	}
	if s.Edges.SegmentLength <= 0 {
		return invalid("edges.segment_length must be positive, got %g", s.Edges.SegmentLength)
	}
	if math.Abs(s.Edges.Curvature) >= 90 {
		return invalid("edges.curvature must be within (-90, 90) degrees, got %g", s.Edges.Curvature)
	}
	if s.Nodes.Halo.Enabled && s.Nodes.Halo.Rings < 1 {
		return invalid("nodes.halo.rings must be >= 1 when the halo is enabled")
	}
	if s.Closeness.GridSize < 2 {
		return invalid("closeness.grid_size must be >= 2, got %d", s.Closeness.GridSize)
	}
	if s.Closeness.Epsilon <= 0 {
		return invalid("closeness.epsilon must be positive, got %g", s.Closeness.Epsilon)
	}

	for _, c := range s.colors() {
		if c == "" {
			continue
		}
		if _, err := ParseColor(c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSettings, err, "colour %q", c)
		}
	}
	return nil
}

func (s *Settings) colors() []string {
	out := []string{
		s.Geometry.DefaultColor, s.Background.Color, s.Heatmap.Color,
		s.Edges.Color, s.Nodes.StrokeColor, s.Labels.Color, s.Overlay.Color,
	}
	return append(out, s.Relief.HypsoColors...)
}

func divisible(mm float64, n int) bool {
	q := mm / float64(n)
	return math.Abs(q-math.Round(q*1e6)/1e6) < 1e-9
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidSettings, format, args...)
}
