package render

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/matzehuels/netposter/pkg/errors"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// Raster output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// JPEGQuality is the quality used for JPEG output.
const JPEGQuality = 92

// FormatFromPath returns the raster format implied by a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported image extension %q", filepath.Ext(path))
	}
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG:
		return imaging.Encode(w, img, imaging.PNG)
	case FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q", format)
	}
}

// WriteFile encodes img into path, creating parent directories. The format
// follows the extension.
func WriteFile(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "encode %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", path)
	}
	return nil
}

// Resample scales img to w×h with the named filter. An image that already
// has the requested size is returned unchanged.
func Resample(img image.Image, w, h int, filter string) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	switch filter {
	case settings.ResampleLanczos:
		return imaging.Resize(img, w, h, imaging.Lanczos)
	case settings.ResampleBilinear:
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		return dst
	default:
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		return dst
	}
}

// TilePath returns the file name of one tile of a tiled export:
// poster.png becomes poster_r1_c0.png.
func TilePath(path string, row, col int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_r%d_c%d%s", strings.TrimSuffix(path, ext), row, col, ext)
}
