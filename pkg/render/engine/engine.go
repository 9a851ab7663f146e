// Package engine is the raster renderer.
//
// A [Renderer] owns a private, normalised copy of one graph and everything
// derived from it. Fields, the node draw order, edge paths and label
// placement are computed lazily, at most once, and shared by every tile:
//
//	r, err := engine.New(g, s, engine.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	img, err := r.Render(ctx)
//
// Renderers hold no global state. To render again with other settings,
// create a new renderer; independent renderers may run in parallel.
package engine

import (
	"io"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/netposter/pkg/closeness"
	"github.com/matzehuels/netposter/pkg/errors"
	"github.com/matzehuels/netposter/pkg/graph"
	"github.com/matzehuels/netposter/pkg/render/edges"
	"github.com/matzehuels/netposter/pkg/render/field"
	"github.com/matzehuels/netposter/pkg/render/geometry"
	"github.com/matzehuels/netposter/pkg/render/nodes"
	"github.com/matzehuels/netposter/pkg/render/overlay"
	"github.com/matzehuels/netposter/pkg/render/raster"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. Lines are tagged with the renderer id.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOverlay injects the overlay layer, replacing the one selected by the
// settings. The renderer calls f once for its own instance; a nil result
// disables the overlay.
func WithOverlay(f overlay.Factory) Option {
	return func(r *Renderer) {
		r.newOverlay = f
	}
}

// WithEvents provides the event table used by the tag overlay.
func WithEvents(ev []graph.Event) Option {
	return func(r *Renderer) { r.events = ev }
}

// WithWorkers bounds the goroutines used for fields and tiles.
func WithWorkers(n int) Option {
	return func(r *Renderer) { r.workers = n }
}

// Renderer renders one graph with one settings snapshot.
type Renderer struct {
	id       string
	settings settings.Settings
	graph    *graph.Graph
	layout   *geometry.Layout
	events   []graph.Event
	logger   *log.Logger
	workers  int

	overlay    overlay.Overlay
	newOverlay overlay.Factory

	proximity memo[*field.Proximity]
	density   memo[*field.Field]
	relief    memo[*field.Field]
	elevation memo[*field.Field]
	heatScale memo[float64]
	order     memo[[]int]
	paths     memo[[]edges.Path]
	labels    memo[[]nodes.Label]
	closeness memo[closeness.Result]
	prepared  memo[struct{}]

	labelText memo[*raster.Text]
}

// New validates s and g and returns a renderer over a private copy of g.
func New(g *graph.Graph, s settings.Settings, opts ...Option) (*Renderer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "nil graph")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		id:       uuid.NewString()[:8],
		settings: s,
		graph:    g.Clone(),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	r.logger = r.logger.With("render", r.id)

	if r.newOverlay != nil {
		r.overlay = r.newOverlay()
	} else {
		o, err := overlay.New(s.Overlay.Kind)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSettings, err, "overlay")
		}
		r.overlay = o
	}

	r.layout = geometry.Normalize(r.graph, r.settings)
	if n := r.layout.Repositioned; n > 0 {
		r.logger.Warn("nodes without coordinates placed at random", "count", n)
	}
	if n := r.layout.Recolored; n > 0 {
		r.logger.Warn("nodes with missing or invalid colour", "count", n)
	}
	if r.layout.Empty() {
		r.logger.Warn("graph has no nodes, rendering an empty canvas")
	}
	r.logger.Debug("renderer ready",
		"nodes", len(r.layout.Nodes), "edges", len(r.layout.Edges),
		"canvas", [2]int{r.layout.Width, r.layout.Height}, "scale", r.layout.Scale)
	return r, nil
}

// ID returns the short identifier used in log lines.
func (r *Renderer) ID() string { return r.id }

// Layout returns the normalised geometry. It must not be modified.
func (r *Renderer) Layout() *geometry.Layout { return r.layout }

// Settings returns the settings snapshot.
func (r *Renderer) Settings() settings.Settings { return r.settings }

// Events returns the event table.
func (r *Renderer) Events() []graph.Event { return r.events }

// Logger returns the renderer's logger.
func (r *Renderer) Logger() *log.Logger { return r.logger }

// Overlay returns the overlay in use, or nil.
func (r *Renderer) Overlay() overlay.Overlay { return r.overlay }

// Stats summarises a renderer.
type Stats struct {
	Nodes        int
	Edges        int
	Repositioned int
	Recolored    int
	Tiles        int
	CanvasWidth  int
	CanvasHeight int
	OutputWidth  int
	OutputHeight int
}

// Stats returns the renderer's summary.
func (r *Renderer) Stats() Stats {
	ow, oh := r.settings.OutputSize()
	return Stats{
		Nodes:        len(r.layout.Nodes),
		Edges:        len(r.layout.Edges),
		Repositioned: r.layout.Repositioned,
		Recolored:    r.layout.Recolored,
		Tiles:        r.settings.Tiles,
		CanvasWidth:  r.layout.Width,
		CanvasHeight: r.layout.Height,
		OutputWidth:  ow,
		OutputHeight: oh,
	}
}

// memo computes a value once. A failed computation is remembered too; a
// new renderer is the way to retry.
type memo[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (m *memo[T]) get(fn func() (T, error)) (T, error) {
	m.once.Do(func() { m.val, m.err = fn() })
	return m.val, m.err
}

var _ overlay.Scene = (*Renderer)(nil)
