package field

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Field is a 2-D grid of values covering the full canvas.
type Field struct {
	W, H int
	// RatioX and RatioY are grid points per render pixel, at most 1.
	RatioX, RatioY float64
	Data           []float32
}

// Options controls how a field computation is scheduled.
type Options struct {
	// Workers bounds the number of goroutines; 0 means GOMAXPROCS.
	Workers int
	// Progress, when set, is called after each block of rows. It may be
	// called from several goroutines.
	Progress func(done, total int)
}

// Grid returns the grid size for a canvas under a pixel budget. The returned
// ratio is 1 when the canvas fits the budget.
func Grid(canvasW, canvasH, budget int) (w, h int, ratio float64) {
	ratio = 1
	if px := canvasW * canvasH; budget > 0 && px > budget {
		ratio = math.Sqrt(float64(budget) / float64(px))
	}
	w = max(1, int(math.Ceil(float64(canvasW)*ratio)))
	h = max(1, int(math.Ceil(float64(canvasH)*ratio)))
	return w, h, ratio
}

// New allocates a zero field of the given grid size over a canvas.
func New(gridW, gridH, canvasW, canvasH int) *Field {
	return &Field{
		W:      gridW,
		H:      gridH,
		RatioX: float64(gridW) / float64(max(1, canvasW)),
		RatioY: float64(gridH) / float64(max(1, canvasH)),
		Data:   make([]float32, gridW*gridH),
	}
}

// At returns the value at grid point (x, y), clamped to the grid.
func (f *Field) At(x, y int) float32 {
	x = clampInt(x, 0, f.W-1)
	y = clampInt(y, 0, f.H-1)
	return f.Data[y*f.W+x]
}

// Center returns the render-pixel position of grid point (x, y).
func (f *Field) Center(x, y int) (float64, float64) {
	return (float64(x) + 0.5) / f.RatioX, (float64(y) + 0.5) / f.RatioY
}

// Sample returns the bilinearly interpolated value at continuous render
// coordinates (px, py). Pixel (i, j) of the canvas is sampled at
// (i+0.5, j+0.5).
func (f *Field) Sample(px, py float64) float64 {
	gx := px*f.RatioX - 0.5
	gy := py*f.RatioY - 0.5
	x0 := int(math.Floor(gx))
	y0 := int(math.Floor(gy))
	tx := gx - float64(x0)
	ty := gy - float64(y0)

	v00 := float64(f.At(x0, y0))
	v10 := float64(f.At(x0+1, y0))
	v01 := float64(f.At(x0, y0+1))
	v11 := float64(f.At(x0+1, y0+1))
	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return top + (bottom-top)*ty
}

// Max returns the largest value in the field.
func (f *Field) Max() float64 {
	var m float32
	for _, v := range f.Data {
		if v > m {
			m = v
		}
	}
	return float64(m)
}

// Sum returns the sum of all values.
func (f *Field) Sum() float64 {
	var s float64
	for _, v := range f.Data {
		s += float64(v)
	}
	return s
}

// rows runs fn over [0, h) split into blocks of rows.
func rows(ctx context.Context, h int, opts Options, fn func(y0, y1 int)) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	block := max(1, h/(workers*4))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var done atomic.Int64
	for y0 := 0; y0 < h; y0 += block {
		y1 := min(h, y0+block)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(y0, y1)
			n := done.Add(int64(y1 - y0))
			if opts.Progress != nil {
				opts.Progress(int(n), h)
			}
			return nil
		})
	}
	return g.Wait()
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
