// Package pkg provides the libraries behind netposter, a raster renderer for
// weighted actor networks.
//
// # Overview
//
// A positioned graph of actors (nodes with an optional position, size and
// colour) and weighted relations between them is turned into a layered poster:
//
//	graph JSON
//	     ↓
//	[render/geometry]   normalise coordinates, radii and colours
//	     ↓
//	[render/field]      proximity, density and relief fields
//	     ↓
//	[render/edges], [render/nodes], [render/overlay]   one raster layer each
//	     ↓
//	[render/engine]     composite, tile and resample to the output DPI
//	     ↓
//	PNG / JPEG tiles, SVG schematic, closeness chart, JSON geometry
//
// # Main Packages
//
// [graph] - Input types and JSON import.
//
// [render/settings] - The immutable configuration of one render, loaded from
// TOML on top of [settings.Defaults].
//
// [render/engine] - The renderer. It owns every memoised field and layer of one
// graph and renders the whole image or any single tile of it, bit-identical
// to the corresponding region of the whole image.
//
// [closeness] - The Connected-Closeness Estimator and its diagnostic chart.
//
// [pipeline] - Load, render and cache artifacts. Shared by the render and
// frames commands.
//
// [cache] - Artifact cache with null, file and Redis backends.
//
// [observability] - Hooks for render, pipeline and cache events.
//
// [errors] - Structured errors with codes.
//
// # Quick Start
//
//	g, _ := graph.ImportJSON("day.json")
//	s := settings.Defaults()
//	s.Tiles = 2
//	r, _ := engine.New(g, s)
//	paths, _ := r.Export(ctx, "poster.png") // poster_r0_c0.png ... poster_r1_c1.png
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/graph
// [render/settings]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/render/settings
// [settings.Defaults]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/render/settings#Defaults
// [render/geometry]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/render/geometry
// [render/field]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/render/field
// [render/edges]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/render/edges
// [render/nodes]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/render/nodes
// [render/overlay]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/render/overlay
// [render/engine]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/render/engine
// [closeness]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/closeness
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/netposter/pkg/errors
package pkg
