package raster

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Disk fills a circle of radius r centred at (cx, cy).
func Disk(dst *image.RGBA, cx, cy, r float64, c colorful.Color, a float64) {
	if r <= 0 || a <= 0 {
		return
	}
	c = c.Clamped()
	b := box(cx-r, cy-r, cx+r, cy+r).Intersect(dst.Rect)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dy := float64(y) + 0.5 - cy
		for x := b.Min.X; x < b.Max.X; x++ {
			d := math.Hypot(float64(x)+0.5-cx, dy)
			if cov := overlap(d, -r, r); cov > 0 {
				Blend(dst, x, y, c, a*cov)
			}
		}
	}
}

// Segment strokes the segment from (x0, y0) to (x1, y1) with the given
// width and butt caps. Zero-length segments draw nothing.
func Segment(dst *image.RGBA, x0, y0, x1, y1, width float64, c colorful.Color, a float64) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 || width <= 0 || a <= 0 {
		return
	}
	c = c.Clamped()
	ux, uy := dx/length, dy/length
	hw := width / 2
	b := box(math.Min(x0, x1)-hw, math.Min(y0, y1)-hw, math.Max(x0, x1)+hw, math.Max(y0, y1)+hw).Intersect(dst.Rect)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		ry := float64(y) + 0.5 - y0
		for x := b.Min.X; x < b.Max.X; x++ {
			rx := float64(x) + 0.5 - x0
			along := overlap(rx*ux+ry*uy, 0, length)
			if along <= 0 {
				continue
			}
			across := overlap(ry*ux-rx*uy, -hw, hw)
			if cov := along * across; cov > 0 {
				Blend(dst, x, y, c, a*cov)
			}
		}
	}
}

// Rect fills the axis-aligned rectangle [x0, x1) × [y0, y1).
func Rect(dst *image.RGBA, x0, y0, x1, y1 float64, c colorful.Color, a float64) {
	if a <= 0 {
		return
	}
	c = c.Clamped()
	b := box(x0, y0, x1, y1).Intersect(dst.Rect)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		cy := overlap(float64(y)+0.5, y0, y1)
		for x := b.Min.X; x < b.Max.X; x++ {
			if cov := cy * overlap(float64(x)+0.5, x0, x1); cov > 0 {
				Blend(dst, x, y, c, a*cov)
			}
		}
	}
}

// overlap returns how much of the unit interval centred at v lies inside
// [lo, hi].
func overlap(v, lo, hi float64) float64 {
	return clamp01(math.Min(v+0.5, hi) - math.Max(v-0.5, lo))
}

// box returns the pixel rectangle touched by a continuous bounding box.
func box(x0, y0, x1, y1 float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1))+1, int(math.Ceil(y1))+1,
	)
}
