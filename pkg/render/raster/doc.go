// Package raster draws anti-aliased shapes and text into layers.
//
// A layer is an *image.RGBA whose bounds are the rectangle of one tile in
// canvas pixels. Shapes are given in continuous canvas coordinates and
// every pixel's coverage is computed analytically from the pixel centre
// (x+0.5, y+0.5), so a pixel receives the same value whichever tile it is
// drawn in. This is what makes tiled renders stitch without seams.
//
// Colours are premultiplied on write; [Blend] is the Porter-Duff "over"
// operator for a single pixel.
package raster
