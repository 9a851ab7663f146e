package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/netposter/pkg/errors"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"a/poster.png", FormatPNG, false},
		{"poster.JPG", FormatJPEG, false},
		{"poster.jpeg", FormatJPEG, false},
		{"poster.svg", "", true},
		{"poster", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %v", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("FormatFromPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTilePath(t *testing.T) {
	if got := TilePath("out/poster.png", 1, 0); got != "out/poster_r1_c0.png" {
		t.Errorf("TilePath = %q", got)
	}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestResample(t *testing.T) {
	src := solid(40, 20, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	for _, f := range []string{settings.ResampleBilinear, settings.ResampleCatmullRom, settings.ResampleLanczos} {
		t.Run(f, func(t *testing.T) {
			out := Resample(src, 20, 10, f)
			if b := out.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
				t.Fatalf("size = %v", b)
			}
			r, g, _, a := out.At(10, 5).RGBA()
			if a>>8 != 255 || r>>8 < 195 || r>>8 > 205 || g>>8 < 95 || g>>8 > 105 {
				t.Errorf("uniform colour changed: %v", out.At(10, 5))
			}
		})
	}
	if Resample(src, 40, 20, settings.ResampleLanczos) != image.Image(src) {
		t.Error("same size should return the input")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "poster.png")
	img := solid(8, 4, color.RGBA{G: 255, A: 255})
	if err := WriteFile(path, img); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := got.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("decoded size = %v", b)
	}

	jpg := filepath.Join(dir, "poster.jpg")
	if err := WriteFile(jpg, img); err != nil {
		t.Fatal(err)
	}

	err = WriteFile(filepath.Join(dir, "missing", "x.tiff"), img)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}
