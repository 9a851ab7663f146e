package field

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
)

// Sun is the light source of a hillshade. Angles are degrees; azimuth is
// measured like a compass bearing on the raster.
type Sun struct {
	Azimuth      float64
	Elevation    float64
	Exaggeration float64
}

// Elevation returns f scaled into [0, 1] by its maximum. A flat zero field
// stays zero.
func Elevation(f *Field) *Field {
	out := &Field{W: f.W, H: f.H, RatioX: f.RatioX, RatioY: f.RatioY, Data: make([]float32, len(f.Data))}
	data := make([]float64, len(f.Data))
	for i, v := range f.Data {
		data[i] = float64(v)
	}
	m, err := stats.Max(data)
	if err != nil || m <= 0 {
		return out
	}
	for i, v := range data {
		out.Data[i] = float32(v / m)
	}
	return out
}

// ComputeRelief hillshades the density field treated as an elevation map.
// The result holds a luminance in [0, 1] per grid point: 1 for terrain facing
// the sun as much as flat ground does, falling towards 0 on slopes turned
// away from it.
//
// Gradients use the 4-neighbourhood with borders clamped. The vertical
// exaggeration is multiplied by the grid's linear size so the shading does
// not change with the pixel budget.
func ComputeRelief(ctx context.Context, density *Field, sun Sun, opts Options) (*Field, error) {
	elev := Elevation(density)
	out := &Field{W: elev.W, H: elev.H, RatioX: elev.RatioX, RatioY: elev.RatioY, Data: make([]float32, len(elev.Data))}

	z := sun.Exaggeration * math.Sqrt(float64(elev.W*elev.H))
	az := sun.Azimuth * math.Pi / 180
	zenith := math.Pi/2 - sun.Elevation*math.Pi/180
	flat := math.Cos(zenith)

	err := rows(ctx, elev.H, opts, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < elev.W; x++ {
				dx := float64(elev.At(x+1, y)-elev.At(x-1, y)) / 2
				dy := float64(elev.At(x, y+1)-elev.At(x, y-1)) / 2
				out.Data[y*elev.W+x] = float32(shade(dx, dy, z, az, zenith, flat))
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func shade(dx, dy, z, az, zenith, flat float64) float64 {
	slope := math.Atan(z * math.Hypot(dx, dy))
	aspect := math.Atan2(-dy, -dx)
	refl := math.Cos(math.Pi-aspect-az)*math.Sin(slope)*math.Sin(zenith) +
		math.Cos(slope)*math.Cos(zenith)
	if flat > 1e-9 {
		refl /= flat
	}
	return math.Max(0, math.Min(1, refl))
}

// Band returns the hypsometric band of an elevation in [0, 1] when the range
// is split into n equal bands.
func Band(e float64, n int) int {
	if n <= 1 {
		return 0
	}
	b := int(e * float64(n))
	return clampInt(b, 0, n-1)
}
