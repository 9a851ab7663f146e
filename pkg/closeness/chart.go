package closeness

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
)

const chartMargin = 40

// Chart plots the evaluated C(Δ), E(Δ) and P(Δ) curves with a marker at
// Δmax. The y axis spans [-1, 1].
func Chart(r Result, w, h int) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	pw := float64(w - 2*chartMargin)
	ph := float64(h - 2*chartMargin)
	sx := func(d float64) float64 {
		if r.MaxDistance == 0 {
			return chartMargin
		}
		return chartMargin + d/r.MaxDistance*pw
	}
	sy := func(v float64) float64 {
		return chartMargin + (1-v)/2*ph
	}

	// axes and the zero line
	dc.SetRGB(0.3, 0.3, 0.3)
	dc.SetLineWidth(1)
	dc.DrawLine(chartMargin, chartMargin, chartMargin, float64(h-chartMargin))
	dc.DrawLine(chartMargin, sy(0), float64(w-chartMargin), sy(0))
	dc.Stroke()

	curves := []struct {
		r, g, b float64
		value   func(Sample) float64
	}{
		{0.2, 0.4, 0.8, func(s Sample) float64 { return s.E }},
		{0.8, 0.3, 0.2, func(s Sample) float64 { return s.P }},
		{0, 0, 0, func(s Sample) float64 { return s.C }},
	}
	for _, c := range curves {
		dc.SetRGB(c.r, c.g, c.b)
		dc.SetLineWidth(2)
		for i, s := range r.Samples {
			if i == 0 {
				dc.MoveTo(sx(s.Delta), sy(c.value(s)))
			} else {
				dc.LineTo(sx(s.Delta), sy(c.value(s)))
			}
		}
		dc.Stroke()
	}

	title := "inconclusive"
	if r.Reason != "" {
		title += ": " + r.Reason
	}
	if !r.Inconclusive {
		title = fmt.Sprintf("delta max = %.1f px, C = %.3f", r.DeltaMax, r.CMax)
		dc.SetRGBA(0.1, 0.6, 0.2, 0.8)
		dc.SetDash(4, 4)
		dc.DrawLine(sx(r.DeltaMax), chartMargin, sx(r.DeltaMax), float64(h-chartMargin))
		dc.Stroke()
		dc.SetDash()
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, float64(w)/2, chartMargin/2, 0.5, 0.5)
	return dc.Image()
}
