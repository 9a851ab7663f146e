// Package field computes the scalar fields that drive edge quality and the
// terrain-like overlays.
//
// Every field is computed once over the full, untiled canvas, possibly at a
// reduced resolution bounded by a pixel budget, and sampled per tile with
// bilinear interpolation. Sampling uses continuous render-pixel coordinates
// of the full canvas, so adjacent tiles read identical values along their
// shared edge.
//
//   - [Proximity]: nearest node id and normalised distance, a bounded
//     discrete Voronoi approximation.
//   - [ComputeDensity]: accumulated inverse-quadratic node influence.
//   - [ComputeRelief]: Lambertian hillshade of the density treated as an
//     elevation map.
//
// Field computations are split by grid rows across workers. Each grid point
// is written by exactly one worker and nodes are visited in index order, so
// results do not depend on the worker count.
package field
