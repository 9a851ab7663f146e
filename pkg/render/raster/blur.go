package raster

import (
	"image"
	"math"
)

// BoxesForGauss returns n odd box widths whose successive application
// approximates a gaussian blur of standard deviation sigma.
func BoxesForGauss(sigma float64, n int) []int {
	v := 12 * sigma * sigma
	wl := int(math.Floor(math.Sqrt(v/float64(n) + 1)))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2
	m := int(math.Round((v - float64(n*wl*wl) - float64(4*n*wl) - float64(3*n)) / float64(-4*wl-4)))

	sizes := make([]int, n)
	for i := range sizes {
		if i < m {
			sizes[i] = wl
		} else {
			sizes[i] = wu
		}
	}
	return sizes
}

// BlurReach returns how far, in pixels, a [Blur] of sigma can move colour.
// A layer blurred on a rectangle padded by this amount agrees with the
// unpadded full-canvas blur everywhere inside the original rectangle.
func BlurReach(sigma float64) int {
	if sigma <= 0 {
		return 0
	}
	r := 0
	for _, w := range BoxesForGauss(sigma, 3) {
		r += (w - 1) / 2
	}
	return r
}

// Blur applies three horizontal and vertical box blur passes to img in
// place, approximating a gaussian of standard deviation sigma pixels.
// Pixels beyond the image edge repeat the edge pixel.
func Blur(img *image.RGBA, sigma float64) {
	if sigma <= 0 || img.Rect.Empty() {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	tmp := make([]uint8, len(img.Pix))
	for _, size := range BoxesForGauss(sigma, 3) {
		r := (size - 1) / 2
		if r == 0 {
			continue
		}
		boxH(img.Pix, tmp, w, h, img.Stride, r)
		boxV(tmp, img.Pix, w, h, img.Stride, r)
	}
}

func boxH(src, dst []uint8, w, h, stride, r int) {
	d := 2*r + 1
	for y := 0; y < h; y++ {
		row := y * stride
		for ch := 0; ch < 4; ch++ {
			at := func(x int) int {
				return int(src[row+clampInt(x, 0, w-1)*4+ch])
			}
			sum := 0
			for k := -r; k <= r; k++ {
				sum += at(k)
			}
			for x := 0; x < w; x++ {
				dst[row+x*4+ch] = uint8((sum + d/2) / d)
				sum += at(x+r+1) - at(x-r)
			}
		}
	}
}

func boxV(src, dst []uint8, w, h, stride, r int) {
	d := 2*r + 1
	for x := 0; x < w; x++ {
		for ch := 0; ch < 4; ch++ {
			col := x*4 + ch
			at := func(y int) int {
				return int(src[clampInt(y, 0, h-1)*stride+col])
			}
			sum := 0
			for k := -r; k <= r; k++ {
				sum += at(k)
			}
			for y := 0; y < h; y++ {
				dst[y*stride+col] = uint8((sum + d/2) / d)
				sum += at(y+r+1) - at(y-r)
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
