// Package render holds the output side of the raster pipeline: encoding
// images, resampling from render to output resolution and naming tile
// files.
//
// The drawing itself lives in the subpackages:
//
//   - [settings]: the configuration snapshot of one render
//   - [geometry]: graph to raster-space normalisation
//   - [field]: proximity, density and relief fields
//   - [raster]: layers and analytic shape coverage
//   - [edges], [nodes]: the two graph layers
//   - [overlay]: the injectable overlay layer
//   - [engine]: the renderer owning fields, tiles and the compositor
//   - [schematic]: a vector schematic through Graphviz
//
// [settings]: github.com/matzehuels/netposter/pkg/render/settings
// [geometry]: github.com/matzehuels/netposter/pkg/render/geometry
// [field]: github.com/matzehuels/netposter/pkg/render/field
// [raster]: github.com/matzehuels/netposter/pkg/render/raster
// [edges]: github.com/matzehuels/netposter/pkg/render/edges
// [nodes]: github.com/matzehuels/netposter/pkg/render/nodes
// [overlay]: github.com/matzehuels/netposter/pkg/render/overlay
// [engine]: github.com/matzehuels/netposter/pkg/render/engine
// [schematic]: github.com/matzehuels/netposter/pkg/render/schematic
package render
