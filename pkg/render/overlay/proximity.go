package overlay

import (
	"context"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netposter/pkg/render/field"
	"github.com/matzehuels/netposter/pkg/render/raster"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// goldenAngle spreads consecutive node hues around the colour wheel.
const goldenAngle = 137.50776405003785

// ProximityMonitor paints the proximity field: every claimed pixel takes a
// hue derived from its node, fading out towards the rim of the halo. It is
// a diagnostic for edge quality.
type ProximityMonitor struct {
	prox    *field.Proximity
	opacity float64
}

func (o *ProximityMonitor) Name() string { return settings.OverlayProximity }

func (o *ProximityMonitor) Prepare(ctx context.Context, s Scene) error {
	*o = ProximityMonitor{}
	p, err := s.Proximity(ctx)
	if err != nil {
		return err
	}
	o.prox = p
	o.opacity = s.Settings().Overlay.Opacity
	return nil
}

// NodeColor returns the monitor colour of node id.
func NodeColor(id int) colorful.Color {
	return colorful.Hcl(math.Mod(float64(id)*goldenAngle, 360), 0.55, 0.65).Clamped()
}

func (o *ProximityMonitor) Draw(dst *image.RGBA, _ raster.Tile) {
	if o.prox == nil {
		return
	}
	b := dst.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			id, d, ok := o.prox.Sample(float64(x)+0.5, float64(y)+0.5)
			if !ok {
				continue
			}
			raster.Blend(dst, x, y, NodeColor(id), o.opacity*(1-d))
		}
	}
}
