package schematic

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/netposter/pkg/errors"
	"github.com/matzehuels/netposter/pkg/render/geometry"
)

// Options configures schematic generation.
type Options struct {
	// Labels adds each node's label next to it.
	Labels bool
	// EdgeColor is the stroke colour of edges; empty means grey.
	EdgeColor string
}

// ToDOT converts a normalised layout to Graphviz DOT source with every node
// pinned at its raster position. One layout pixel becomes one point.
func ToDOT(l *geometry.Layout, opts Options) string {
	edgeColor := opts.EdgeColor
	if edgeColor == "" {
		edgeColor = "#808080"
	}
	kind, arrow := "graph", "--"
	if l.Directed {
		kind, arrow = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", kind)
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%d,%d\";\n", l.Width, l.Height)
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, label=\"\", penwidth=0.5, color=white];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=0.5, arrowsize=0.4];\n", edgeColor)
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", num(n.X), num(float64(l.Height)-n.Y)),
			fmt.Sprintf("width=%s", num(2*n.R/72)),
			fmt.Sprintf("fillcolor=%q", n.Color.Clamped().Hex()),
		}
		if opts.Labels {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", n.Label))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		src, dst := l.Nodes[e.Source].ID, l.Nodes[e.Target].ID
		if e.Opacity < 1 {
			fmt.Fprintf(&buf, "  %q %s %q [color=%q];\n", src, arrow, dst, withAlpha(edgeColor, e.Opacity))
			continue
		}
		fmt.Fprintf(&buf, "  %q %s %q;\n", src, arrow, dst)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// withAlpha appends an alpha byte to a #rrggbb colour.
func withAlpha(hex string, a float64) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	return fmt.Sprintf("%s%02x", hex, int(a*255+0.5))
}

// RenderSVG renders DOT source to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()
	g.SetLayout(string(graphviz.NEATO))

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render schematic")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's root element with one whose viewBox
// starts at the origin and whose size matches it, so the SVG scales cleanly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
