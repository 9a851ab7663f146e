package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netposter/pkg/buildinfo"
	"github.com/matzehuels/netposter/pkg/cache"
	"github.com/matzehuels/netposter/pkg/errors"
	"github.com/matzehuels/netposter/pkg/graph"
	"github.com/matzehuels/netposter/pkg/observability"
	"github.com/matzehuels/netposter/pkg/render/engine"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner may serve many goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// means cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Instrument(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads the input, renders every requested format and caches the
// artifacts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	g, events, err := Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Graph:     g,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
	}
	res.Stats.LoadTime = time.Since(start)
	res.Stats.Nodes = len(g.Nodes)
	res.Stats.Edges = len(g.Edges)

	keys, graphHash, err := r.artifactKeys(g, events, opts)
	if err != nil {
		return nil, err
	}
	res.GraphHash = graphHash

	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, keys[format])
			if err != nil {
				opts.Logger.Warn("cache read failed", "format", format, "error", err)
				break
			}
			if !hit {
				break
			}
			res.Artifacts[format] = data
		}
		if len(res.Artifacts) == len(opts.Formats) {
			res.CacheHit = true
			opts.Logger.Info("artifacts from cache", "input", opts.Input, "formats", opts.Formats)
			return res, nil
		}
		clear(res.Artifacts)
	}

	renderStart := time.Now()
	rd, err := engine.New(g, opts.Settings, opts.engineOptions(events)...)
	if err != nil {
		return nil, err
	}
	res.Stats.Engine = rd.Stats()

	artifacts, cr, err := Render(ctx, rd, opts.Formats)
	if err != nil {
		return nil, err
	}
	res.Artifacts = artifacts
	res.Closeness = cr
	res.Stats.RenderTime = time.Since(renderStart)

	for format, data := range artifacts {
		if err := r.Cache.Set(ctx, keys[format], data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
		}
	}

	opts.Logger.Info("rendered",
		"input", opts.Input,
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"formats", opts.Formats,
		"duration", res.Stats.RenderTime)
	return res, nil
}

// ExportTiles renders opts and writes the raster image to path. With a tile
// factor above 1 one file per tile is written. It bypasses the cache.
func (r *Runner) ExportTiles(ctx context.Context, opts Options, path string) ([]string, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	g, events, err := Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	rd, err := engine.New(g, opts.Settings, opts.engineOptions(events)...)
	if err != nil {
		return nil, err
	}
	return rd.Export(ctx, path)
}

// artifactKeys derives one cache key per format from the graph bytes, the
// event table, the settings and the build version.
func (r *Runner) artifactKeys(g *graph.Graph, events []graph.Event, opts Options) (map[string]string, string, error) {
	graphData, err := graph.Marshal(g)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "serialize graph for cache key")
	}
	eventData, err := json.Marshal(events)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "serialize events for cache key")
	}
	settingsData, err := settings.Encode(opts.Settings)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "serialize settings for cache key")
	}

	graphHash := cache.Hash(graphData)
	graphKey := r.Keyer.GraphKey(graphHash, cache.Hash(eventData))
	settingsHash := cache.Hash([]byte(settingsData))

	keys := make(map[string]string, len(opts.Formats))
	for _, format := range opts.Formats {
		keys[format] = r.Keyer.ArtifactKey(graphKey, cache.ArtifactKeyOpts{
			Format:       format,
			SettingsHash: settingsHash,
			Overlay:      opts.overlayName(),
			Version:      buildinfo.Fingerprint(),
		})
	}
	return keys, graphHash, nil
}

// Load reads the graph and the event table named by opts.
func Load(ctx context.Context, opts Options) (*graph.Graph, []graph.Event, error) {
	start := time.Now()
	g, events, err := load(opts)
	nodes, edges := 0, 0
	if g != nil {
		nodes, edges = len(g.Nodes), len(g.Edges)
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Input, nodes, edges, time.Since(start), err)
	return g, events, err
}

func load(opts Options) (*graph.Graph, []graph.Event, error) {
	g := opts.Graph
	if g == nil {
		var err error
		if g, err = graph.ImportJSON(opts.Input); err != nil {
			return nil, nil, err
		}
	}
	events := opts.Events
	if events == nil && opts.EventsPath != "" {
		var err error
		if events, err = graph.ImportEvents(opts.EventsPath); err != nil {
			return nil, nil, err
		}
	}
	return g, events, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
