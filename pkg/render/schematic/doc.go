// Package schematic renders the positioned graph as a vector diagram.
//
// The raster engine is the primary output; a schematic is a quick, scalable
// view of the same layout with nodes and straight edges only, useful for
// checking positions and connectivity without rendering a poster.
//
// # Usage
//
//	dot := schematic.ToDOT(layout, schematic.Options{Labels: true})
//	svg, err := schematic.RenderSVG(ctx, dot)
//
// Node positions are pinned, so Graphviz only draws; it never moves a node.
// The y axis is flipped because Graphviz counts upwards.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering with the neato engine.
package schematic
