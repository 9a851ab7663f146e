// Package overlay provides the optional layer drawn between the nodes and
// the labels.
//
// An [Overlay] instance belongs to one renderer. It is prepared once and then asked to draw each
// tile. Preparation may read the renderer's memoized fields through
// [Scene]; drawing must only depend on what was prepared and the tile, so
// tiles can be drawn in any order.
package overlay

import (
	"context"
	"fmt"
	"image"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netposter/pkg/closeness"
	"github.com/matzehuels/netposter/pkg/graph"
	"github.com/matzehuels/netposter/pkg/render/field"
	"github.com/matzehuels/netposter/pkg/render/geometry"
	"github.com/matzehuels/netposter/pkg/render/raster"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// Scene is the read-only view of a renderer that overlays prepare from.
type Scene interface {
	Layout() *geometry.Layout
	Settings() settings.Settings
	Events() []graph.Event
	Logger() *log.Logger

	Density(ctx context.Context) (*field.Field, error)
	Proximity(ctx context.Context) (*field.Proximity, error)
	Closeness(ctx context.Context) (closeness.Result, error)
}

// Overlay draws one extra layer. An overlay keeps what Prepare computed for
// one renderer; give every renderer its own instance through a [Factory].
type Overlay interface {
	Name() string
	Prepare(ctx context.Context, s Scene) error
	Draw(dst *image.RGBA, t raster.Tile)
}

// Factory creates a fresh overlay for each renderer.
type Factory func() Overlay

// New returns the overlay selected by kind, or nil for settings.OverlayNone.
func New(kind string) (Overlay, error) {
	switch kind {
	case settings.OverlayNone:
		return nil, nil
	case settings.OverlayTags:
		return &TagRegions{}, nil
	case settings.OverlayCloseness:
		return &ClosenessGrid{}, nil
	case settings.OverlayProximity:
		return &ProximityMonitor{}, nil
	default:
		return nil, fmt.Errorf("unknown overlay %q", kind)
	}
}
