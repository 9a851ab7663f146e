// Package graph provides the input types for the raster renderer.
//
// A [Graph] is a set of positioned actors ([Node]) and the broadcast or
// co-occurrence relationships between them ([Edge]). Nodes arrive with a
// layout already computed by an external collaborator; any attribute may be
// missing, in which case the renderer fills it in (see
// pkg/render/geometry).
//
// # Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "directed": true,
//	  "nodes": [
//	    {"id": "a", "label": "Alice", "x": 12.5, "y": -3, "size": 4, "color": "#d94f3d"},
//	    {"id": "b", "flags": {"important": true}}
//	  ],
//	  "edges": [{"source": "a", "target": "b", "weight": 3}]
//	}
//
// Missing x/y/size are decoded as nil pointers so that "absent" and "zero"
// remain distinguishable.
//
// # Events
//
// The broadcast table is a JSON array of [Event] rows, each referencing a
// node id and carrying a set of tags:
//
//	[{"node": "a", "tags": ["climate", "energy"]}]
//
// Events only feed the tag-region overlay.
package graph
