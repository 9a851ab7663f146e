// Package fonts provides the fonts used for raster text.
//
// The faces come from the Go font family, which ships with
// golang.org/x/image as TTF data, so no font files have to be installed on
// the machine rendering posters. Parsed fonts and sized faces are cached
// for the lifetime of the process.
package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Weight selects a font of the family.
type Weight int

const (
	Regular Weight = iota
	Bold
)

// Family is the name used when a font has to be referenced by name, e.g. in
// Graphviz output.
const Family = "Go"

var (
	parseOnce sync.Once
	parsed    [2]*opentype.Font
	parseErr  error

	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

type faceKey struct {
	weight Weight
	size   float64
	dpi    float64
}

func load() error {
	parseOnce.Do(func() {
		for w, data := range [][]byte{goregular.TTF, gobold.TTF} {
			f, err := opentype.Parse(data)
			if err != nil {
				parseErr = fmt.Errorf("parse font %d: %w", w, err)
				return
			}
			parsed[w] = f
		}
	})
	return parseErr
}

// Face returns a face of the given weight, size in points and resolution.
// Faces are shared; font.Face is not safe for concurrent use, so callers
// drawing from several goroutines must use [NewFace].
func Face(w Weight, size, dpi float64) (font.Face, error) {
	k := faceKey{w, size, dpi}
	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[k]; ok {
		return f, nil
	}
	f, err := NewFace(w, size, dpi)
	if err != nil {
		return nil, err
	}
	faces[k] = f
	return f, nil
}

// NewFace returns a new, unshared face.
func NewFace(w Weight, size, dpi float64) (font.Face, error) {
	if err := load(); err != nil {
		return nil, err
	}
	if w != Bold {
		w = Regular
	}
	return opentype.NewFace(parsed[w], &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
}
