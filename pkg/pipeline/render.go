package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"time"

	"github.com/matzehuels/netposter/pkg/closeness"
	"github.com/matzehuels/netposter/pkg/errors"
	"github.com/matzehuels/netposter/pkg/observability"
	"github.com/matzehuels/netposter/pkg/render"
	"github.com/matzehuels/netposter/pkg/render/engine"
	"github.com/matzehuels/netposter/pkg/render/schematic"
)

// Chart size of the closeness diagnostic.
const (
	ChartWidth  = 900
	ChartHeight = 560
)

// Render produces every requested format from one renderer. The raster
// image and the closeness estimate are computed at most once.
func Render(ctx context.Context, r *engine.Renderer, formats []string) (map[string][]byte, *closeness.Result, error) {
	var (
		img image.Image
		cr  *closeness.Result
	)
	raster := func() (image.Image, error) {
		if img != nil {
			return img, nil
		}
		var err error
		img, err = r.Render(ctx)
		return img, err
	}
	estimate := func() (*closeness.Result, error) {
		if cr != nil {
			return cr, nil
		}
		res, err := r.Closeness(ctx)
		if err != nil {
			return nil, err
		}
		cr = &res
		return cr, nil
	}

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		start := time.Now()
		data, err := renderFormat(ctx, r, format, raster, estimate)
		observability.Pipeline().OnArtifact(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, nil, errors.Wrap("", err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, cr, nil
}

func renderFormat(
	ctx context.Context,
	r *engine.Renderer,
	format string,
	raster func() (image.Image, error),
	estimate func() (*closeness.Result, error),
) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatPNG, FormatJPEG:
		img, err := raster()
		if err != nil {
			return nil, err
		}
		if err := render.Encode(&buf, img, format); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case FormatSVG:
		s := r.Settings()
		dot := schematic.ToDOT(r.Layout(), schematic.Options{Labels: s.Labels.Enabled, EdgeColor: s.Edges.Color})
		return schematic.RenderSVG(ctx, dot)

	case FormatChart:
		res, err := estimate()
		if err != nil {
			return nil, err
		}
		if err := render.Encode(&buf, closeness.Chart(*res, ChartWidth, ChartHeight), render.FormatPNG); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case FormatJSON:
		res, err := estimate()
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(exportGeometry(r, res), "", "  ")

	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
}

// Geometry is the JSON artifact: the normalised layout in render pixels and
// the closeness estimate.
type Geometry struct {
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Scale     float64         `json:"scale"`
	Nodes     []GeometryNode  `json:"nodes"`
	Edges     []GeometryEdge  `json:"edges"`
	Closeness ClosenessReport `json:"closeness"`
}

// GeometryNode is one node of the JSON artifact.
type GeometryNode struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	R         float64 `json:"r"`
	Color     string  `json:"color"`
	Important bool    `json:"important,omitempty"`
}

// GeometryEdge is one edge of the JSON artifact.
type GeometryEdge struct {
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Weight  float64 `json:"weight"`
	Opacity float64 `json:"opacity"`
}

// ClosenessReport is the JSON form of a closeness estimate. DeltaMax is
// omitted when the estimate is inconclusive.
type ClosenessReport struct {
	Inconclusive bool     `json:"inconclusive"`
	Reason       string   `json:"reason,omitempty"`
	DeltaMax     *float64 `json:"delta_max,omitempty"`
	CMax         float64  `json:"c_max"`
	Edges        float64  `json:"edge_fraction"`
	Pairs        float64  `json:"pair_fraction"`
	Iterations   int      `json:"iterations"`
	MaxDistance  float64  `json:"max_distance"`
	SampledEdges int      `json:"sampled_edges"`
	SampledPairs int      `json:"sampled_pairs"`
}

// Report converts an estimate to its JSON form.
func Report(res closeness.Result) ClosenessReport {
	out := ClosenessReport{
		Inconclusive: res.Inconclusive,
		Reason:       res.Reason,
		CMax:         res.CMax,
		Edges:        res.E,
		Pairs:        res.P,
		Iterations:   res.Iterations,
		MaxDistance:  res.MaxDistance,
		SampledEdges: res.Edges,
		SampledPairs: res.Pairs,
	}
	if !res.Inconclusive {
		d := res.DeltaMax
		out.DeltaMax = &d
	}
	return out
}

func exportGeometry(r *engine.Renderer, res *closeness.Result) Geometry {
	l := r.Layout()
	g := Geometry{
		Width:     l.Width,
		Height:    l.Height,
		Scale:     l.Scale,
		Nodes:     make([]GeometryNode, len(l.Nodes)),
		Edges:     make([]GeometryEdge, len(l.Edges)),
		Closeness: Report(*res),
	}
	for i, n := range l.Nodes {
		g.Nodes[i] = GeometryNode{ID: n.ID, X: n.X, Y: n.Y, R: n.R, Color: n.Color.Clamped().Hex(), Important: n.Important}
	}
	for i, e := range l.Edges {
		g.Edges[i] = GeometryEdge{
			Source:  l.Nodes[e.Source].ID,
			Target:  l.Nodes[e.Target].ID,
			Weight:  e.Weight,
			Opacity: e.Opacity,
		}
	}
	return g
}
