// Package settings defines the immutable configuration snapshot of one render.
//
// [Defaults] is the single source of truth for every default value. A
// settings file is decoded on top of the defaults with [Load], so absent
// keys keep their default. [Settings.Validate] enforces the invariants the
// engine relies on; the engine copies the struct by value at construction and
// never re-derives any value mid-pipeline.
//
// # Units
//
// Physical lengths are millimetres, resolutions are dots per inch, font sizes
// are points. [Settings.Px] converts millimetres to render pixels.
//
// # Example
//
//	s := settings.Defaults()
//	s.Width, s.Height = 400, 400
//	s.Tiles = 2
//	if err := s.Validate(); err != nil {
//	    return err
//	}
package settings

import (
	"math"
)

const mmPerInch = 25.4

// Resample filters for output-DPI conversion.
const (
	ResampleBilinear   = "bilinear"
	ResampleCatmullRom = "catmullrom"
	ResampleLanczos    = "lanczos"
)

// Overlay kinds.
const (
	OverlayNone      = ""
	OverlayTags      = "tags"
	OverlayCloseness = "closeness"
	OverlayProximity = "proximity"
)

// Default values shared by the CLI and the pipeline.
const (
	DefaultWidth      = 300.0 // mm
	DefaultHeight     = 300.0 // mm
	DefaultDPI        = 150.0
	DefaultTiles      = 1
	DefaultSeed       = int64(42)
	DefaultScaleRatio = 0.1 // mm per layout unit
)

// Settings is the full configuration of one render call.
type Settings struct {
	Width     float64 `toml:"width"`      // image width in mm
	Height    float64 `toml:"height"`     // image height in mm
	RenderDPI float64 `toml:"render_dpi"` // density the pipeline draws at
	OutputDPI float64 `toml:"output_dpi"` // density of the written file
	Tiles     int     `toml:"tiles"`      // N for an N×N grid of partial exports
	Resample  string  `toml:"resample"`
	Seed      int64   `toml:"seed"`

	Geometry   Geometry   `toml:"geometry"`
	Background Background `toml:"background"`
	Heatmap    Heatmap    `toml:"heatmap"`
	Relief     Relief     `toml:"relief"`
	Proximity  Proximity  `toml:"proximity"`
	Edges      Edges      `toml:"edges"`
	Nodes      Nodes      `toml:"nodes"`
	Labels     Labels     `toml:"labels"`
	Overlay    Overlay    `toml:"overlay"`
	Closeness  Closeness  `toml:"closeness"`
}

// Geometry configures the normalizer.
type Geometry struct {
	FlipX  bool    `toml:"flip_x"`
	FlipY  bool    `toml:"flip_y"`
	Rotate float64 `toml:"rotate"` // degrees, counter-clockwise about the origin

	// ScaleRatio is pinned so that renders of different days stay
	// comparable. FitToExtent replaces it with a ratio fitted to the graph.
	ScaleRatio  float64 `toml:"scale_ratio"`
	FitToExtent bool    `toml:"fit_to_extent"`

	MarginTop    float64 `toml:"margin_top"`
	MarginRight  float64 `toml:"margin_right"`
	MarginBottom float64 `toml:"margin_bottom"`
	MarginLeft   float64 `toml:"margin_left"`

	DefaultColor string `toml:"default_color"`
}

// Background configures the bottom layer.
type Background struct {
	Enabled bool   `toml:"enabled"`
	Color   string `toml:"color"`
}

// Heatmap configures the Density Field and its colour overlay.
type Heatmap struct {
	Enabled     bool    `toml:"enabled"`
	Spread      float64 `toml:"spread"`       // mm
	PixelBudget int     `toml:"pixel_budget"` // max grid points
	Color       string  `toml:"color"`
	Opacity     float64 `toml:"opacity"`
}

// Relief configures hillshading of the Density Field.
type Relief struct {
	Enabled      bool    `toml:"enabled"`
	Azimuth      float64 `toml:"azimuth"`   // degrees
	Elevation    float64 `toml:"elevation"` // degrees above the horizon
	Exaggeration float64 `toml:"exaggeration"`
	Strength     float64 `toml:"strength"`

	Hypsometric  bool     `toml:"hypsometric"`
	HypsoBands   int      `toml:"hypso_bands"`
	HypsoColors  []string `toml:"hypso_colors"`
	HypsoOpacity float64  `toml:"hypso_opacity"`
}

// Proximity configures the nearest-node field.
type Proximity struct {
	HaloRange   float64 `toml:"halo_range"` // mm beyond a node's radius
	PixelBudget int     `toml:"pixel_budget"`
}

// Edges configures the edge layer.
type Edges struct {
	Enabled       bool    `toml:"enabled"`
	HighQuality   bool    `toml:"high_quality"`
	Thickness     float64 `toml:"thickness"` // mm
	Color         string  `toml:"color"`
	Opacity       float64 `toml:"opacity"`
	SegmentLength float64 `toml:"segment_length"` // mm
	Curvature     float64 `toml:"curvature"`      // deviation angle in degrees, 0 = straight
	Jitter        float64 `toml:"jitter"`         // mm
}

// Nodes configures node markers and their shadow halo.
type Nodes struct {
	Enabled     bool    `toml:"enabled"`
	StrokeWidth float64 `toml:"stroke_width"` // mm
	StrokeColor string  `toml:"stroke_color"` // empty derives from the fill
	Halo        Halo    `toml:"halo"`
}

// Halo configures the blurred multi-ring node shadow.
type Halo struct {
	Enabled  bool    `toml:"enabled"`
	Rings    int     `toml:"rings"`
	Step     float64 `toml:"step"` // mm between rings
	Strength float64 `toml:"strength"`
	Blur     float64 `toml:"blur"` // gaussian sigma in mm
}

// Labels configures the node label layer.
type Labels struct {
	Enabled  bool    `toml:"enabled"`
	FontSize float64 `toml:"font_size"` // pt
	Color    string  `toml:"color"`
	MinSize  float64 `toml:"min_size"` // node radius in mm
	MaxCount int     `toml:"max_count"`
}

// Overlay selects and configures the injected overlay layer.
type Overlay struct {
	Kind     string  `toml:"kind"`
	Color    string  `toml:"color"`
	Opacity  float64 `toml:"opacity"`
	FontSize float64 `toml:"font_size"` // pt, tag labels
	CellSize float64 `toml:"cell_size"` // mm, tag region grid
}

// Closeness configures the Connected-Closeness Estimator.
type Closeness struct {
	GridSize int     `toml:"grid_size"`
	Epsilon  float64 `toml:"epsilon"`
	MinC     float64 `toml:"min_c"`
	MaxIter  int     `toml:"max_iter"`
}

// Defaults returns fully specified settings.
func Defaults() Settings {
	return Settings{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		RenderDPI: DefaultDPI,
		OutputDPI: DefaultDPI,
		Tiles:     DefaultTiles,
		Resample:  ResampleCatmullRom,
		Seed:      DefaultSeed,
		Geometry: Geometry{
			ScaleRatio:   DefaultScaleRatio,
			MarginTop:    10,
			MarginRight:  10,
			MarginBottom: 10,
			MarginLeft:   10,
			DefaultColor: "#9a9a9a",
		},
		Background: Background{Enabled: true, Color: "#fbfaf7"},
		Heatmap: Heatmap{
			Enabled:     false,
			Spread:      8,
			PixelBudget: 250_000,
			Color:       "#e8a33d",
			Opacity:     0.6,
		},
		Relief: Relief{
			Enabled:      false,
			Azimuth:      315,
			Elevation:    45,
			Exaggeration: 40,
			Strength:     0.5,
			HypsoBands:   8,
			HypsoColors:  []string{"#f4f1e8", "#d9c9a3", "#a98f6b", "#6f5a45"},
			HypsoOpacity: 0.5,
		},
		Proximity: Proximity{
			HaloRange:   6,
			PixelBudget: 4_000_000,
		},
		Edges: Edges{
			Enabled:       true,
			HighQuality:   true,
			Thickness:     0.15,
			Color:         "#303030",
			Opacity:       0.5,
			SegmentLength: 0.5,
			Curvature:     0,
			Jitter:        0,
		},
		Nodes: Nodes{
			Enabled:     true,
			StrokeWidth: 0.2,
			StrokeColor: "#ffffff",
			Halo: Halo{
				Enabled:  false,
				Rings:    4,
				Step:     0.6,
				Strength: 0.35,
				Blur:     1,
			},
		},
		Labels: Labels{
			Enabled:  false,
			FontSize: 8,
			Color:    "#202020",
			MinSize:  1,
			MaxCount: 200,
		},
		Overlay: Overlay{
			Kind:     OverlayNone,
			Color:    "#2a4d8f",
			Opacity:  0.6,
			FontSize: 14,
			CellSize: 25,
		},
		Closeness: Closeness{
			GridSize: 10,
			Epsilon:  0.03,
			MinC:     0.1,
			MaxIter:  100,
		},
	}
}

// Px converts millimetres to render pixels.
func (s *Settings) Px(mm float64) float64 {
	return mm / mmPerInch * s.RenderDPI
}

// CanvasSize returns the pixel size of the full untiled canvas at render DPI.
// It does not depend on the tile factor.
func (s *Settings) CanvasSize() (w, h int) {
	return int(math.Round(s.Px(s.Width))), int(math.Round(s.Px(s.Height)))
}

// TileSize returns the pixel size of one tile at render DPI. Validate
// guarantees the canvas divides evenly.
func (s *Settings) TileSize() (w, h int) {
	cw, ch := s.CanvasSize()
	return cw / s.Tiles, ch / s.Tiles
}

// OutputSize returns the pixel size of the full image at output DPI.
func (s *Settings) OutputSize() (w, h int) {
	cw, ch := s.CanvasSize()
	if s.OutputDPI == s.RenderDPI {
		return cw, ch
	}
	f := s.OutputDPI / s.RenderDPI
	return max(1, int(math.Round(float64(cw)*f))), max(1, int(math.Round(float64(ch)*f)))
}

// OutputTileSize returns the pixel size of one tile at output DPI.
func (s *Settings) OutputTileSize() (w, h int) {
	ow, oh := s.OutputSize()
	return ow / s.Tiles, oh / s.Tiles
}
