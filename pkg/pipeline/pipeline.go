// Package pipeline turns graph files into rendered artifacts.
//
// It is the single entry point shared by the CLI commands: load the graph
// and the optional event table, build one [engine.Renderer], produce the
// requested formats and cache them. Batches of daily graphs are rendered
// in parallel with [Runner.RenderFrames].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "day-042.json",
//	    Formats: []string{pipeline.FormatPNG, pipeline.FormatJSON},
//	})
//	if err != nil {
//	    return err
//	}
//	png := res.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netposter/pkg/closeness"
	"github.com/matzehuels/netposter/pkg/errors"
	"github.com/matzehuels/netposter/pkg/graph"
	"github.com/matzehuels/netposter/pkg/render/engine"
	"github.com/matzehuels/netposter/pkg/render/overlay"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// Output formats.
const (
	FormatPNG   = "png"
	FormatJPEG  = "jpeg"
	FormatSVG   = "svg"   // vector schematic
	FormatChart = "chart" // closeness diagnostic chart, PNG encoded
	FormatJSON  = "json"  // normalised geometry and closeness result
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:   true,
	FormatJPEG:  true,
	FormatSVG:   true,
	FormatChart: true,
	FormatJSON:  true,
}

// Extension returns the file extension of a format, including the dot.
func Extension(format string) string {
	switch format {
	case FormatJPEG:
		return ".jpg"
	case FormatChart:
		return ".chart.png"
	default:
		return "." + format
	}
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: png, jpeg, svg, chart, json)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options configures one pipeline run.
type Options struct {
	// Input is the graph file. Graph, when set, is used instead.
	Input string
	Graph *graph.Graph

	// EventsPath is the broadcast table file. Events, when set, is used
	// instead.
	EventsPath string
	Events     []graph.Event

	// Settings is the full render configuration. A zero value means
	// settings.Defaults().
	Settings settings.Settings

	Formats []string

	// Overlay replaces the overlay selected by the settings. It is called
	// once per renderer, so concurrent frames never share an instance.
	Overlay overlay.Factory

	// Workers bounds the goroutines of the renderer; 0 means GOMAXPROCS.
	Workers int

	// Refresh skips cache reads; results are still written.
	Refresh bool

	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" && o.Graph == nil {
		return errors.New(errors.ErrCodeInvalidInput, "an input graph is required")
	}
	if o.Settings.Width == 0 && o.Settings.Height == 0 && o.Settings.RenderDPI == 0 {
		o.Settings = settings.Defaults()
	}
	if err := o.Settings.Validate(); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(f)
		if o.Formats[i] == "jpg" {
			o.Formats[i] = FormatJPEG
		}
	}
	o.Formats = slices.Compact(o.Formats)
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// engineOptions returns the renderer options implied by o.
func (o *Options) engineOptions(events []graph.Event) []engine.Option {
	opts := []engine.Option{
		engine.WithLogger(o.Logger),
		engine.WithEvents(events),
		engine.WithWorkers(o.Workers),
	}
	if o.Overlay != nil {
		opts = append(opts, engine.WithOverlay(o.Overlay))
	}
	return opts
}

// overlayName is the overlay that will be drawn, for cache keys.
func (o *Options) overlayName() string {
	if o.Overlay != nil {
		if ov := o.Overlay(); ov != nil {
			return ov.Name()
		}
		return settings.OverlayNone
	}
	return o.Settings.Overlay.Kind
}

// Result holds the outputs of one run.
type Result struct {
	Graph     *graph.Graph
	GraphHash string

	// Artifacts holds the encoded outputs keyed by format.
	Artifacts map[string][]byte

	// Closeness is set when a format needed the estimate. It is nil when
	// every artifact came from the cache.
	Closeness *closeness.Result

	Stats Stats

	// CacheHit reports that every artifact came from the cache.
	CacheHit bool
}

// Stats holds timing and size information.
type Stats struct {
	Nodes      int
	Edges      int
	LoadTime   time.Duration
	RenderTime time.Duration
	Engine     engine.Stats
}
