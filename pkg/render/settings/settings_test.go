package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/netposter/pkg/errors"
)

func TestDefaultsAreValid(t *testing.T) {
	s := Defaults()
	if err := s.Validate(); err != nil {
		t.Fatalf("Defaults().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"two tiles", func(s *Settings) { s.Tiles = 2 }, false},
		{"indivisible tiles", func(s *Settings) { s.Tiles = 7 }, true},
		{"zero tiles", func(s *Settings) { s.Tiles = 0 }, true},
		{"negative dpi", func(s *Settings) { s.RenderDPI = -1 }, true},
		{"zero width", func(s *Settings) { s.Width = 0 }, true},
		{"unknown resample", func(s *Settings) { s.Resample = "nearest" }, true},
		{"unknown overlay", func(s *Settings) { s.Overlay.Kind = "weather" }, true},
		{"bad colour", func(s *Settings) { s.Edges.Color = "blue" }, true},
		{"short colour", func(s *Settings) { s.Edges.Color = "#abc" }, false},
		{"huge margins", func(s *Settings) { s.Geometry.MarginLeft = 200; s.Geometry.MarginRight = 200 }, true},
		{"fit without ratio", func(s *Settings) { s.Geometry.ScaleRatio = 0; s.Geometry.FitToExtent = true }, false},
		{"no ratio", func(s *Settings) { s.Geometry.ScaleRatio = 0 }, true},
		{"straight edges only below 90", func(s *Settings) { s.Edges.Curvature = 90 }, true},
		{"closeness grid", func(s *Settings) { s.Closeness.GridSize = 1 }, true},
		{"halo without rings", func(s *Settings) { s.Nodes.Halo.Enabled = true; s.Nodes.Halo.Rings = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidSettings) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidSettings)
			}
		})
	}
}

func TestSizes(t *testing.T) {
	s := Defaults()
	s.Width, s.Height = 50.8, 25.4
	s.RenderDPI, s.OutputDPI = 100, 50
	s.Tiles = 2

	if got := s.Px(25.4); got != 100 {
		t.Errorf("Px(25.4) = %v, want 100", got)
	}
	if w, h := s.TileSize(); w != 100 || h != 50 {
		t.Errorf("TileSize() = %dx%d, want 100x50", w, h)
	}
	if w, h := s.CanvasSize(); w != 200 || h != 100 {
		t.Errorf("CanvasSize() = %dx%d, want 200x100", w, h)
	}
	if w, h := s.OutputTileSize(); w != 50 || h != 25 {
		t.Errorf("OutputTileSize() = %dx%d, want 50x25", w, h)
	}
	if w, h := s.OutputSize(); w != 100 || h != 50 {
		t.Errorf("OutputSize() = %dx%d, want 100x50", w, h)
	}
}

func TestCanvasSizeIgnoresTiles(t *testing.T) {
	// 10 mm at 150 dpi is 59.06 px.
	s := Defaults()
	s.Width, s.Height = 10, 10
	s.RenderDPI, s.OutputDPI = 150, 150
	s.Geometry.MarginTop, s.Geometry.MarginRight, s.Geometry.MarginBottom, s.Geometry.MarginLeft = 1, 1, 1, 1

	for _, tiles := range []int{1, 2} {
		s.Tiles = tiles
		if w, h := s.CanvasSize(); w != 59 || h != 59 {
			t.Errorf("tiles=%d: CanvasSize() = %dx%d, want 59x59", tiles, w, h)
		}
	}

	s.Tiles = 1
	if err := s.Validate(); err != nil {
		t.Errorf("tiles=1: Validate() = %v", err)
	}
	s.Tiles = 2
	if err := s.Validate(); !errors.Is(err, errors.ErrCodeInvalidSettings) {
		t.Errorf("tiles=2 on a 59 px canvas: Validate() = %v, want invalid settings", err)
	}

	s.Tiles = 1
	s.OutputDPI = 300
	if w, _ := s.OutputSize(); w != 118 {
		t.Errorf("OutputSize() width = %d, want 118", w)
	}
}

func TestValidateOutputDivisible(t *testing.T) {
	s := Defaults()
	s.Width, s.Height = 100, 100
	s.RenderDPI, s.OutputDPI = 25.4, 12.954 // 100 px render, 51 px output
	s.Tiles = 2
	if err := s.Validate(); !errors.Is(err, errors.ErrCodeInvalidSettings) {
		t.Errorf("Validate() = %v, want invalid settings", err)
	}
}

func TestDecodeKeepsDefaults(t *testing.T) {
	data := `
width = 200
height = 100
tiles = 2

[edges]
color = "#ff0000"

[nodes.halo]
enabled = true

[mystery]
key = 1
`
	s, unknown, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Width != 200 || s.Height != 100 || s.Tiles != 2 {
		t.Errorf("top-level values not decoded: %+v", s)
	}
	if s.Edges.Color != "#ff0000" {
		t.Errorf("edges.color = %q", s.Edges.Color)
	}
	if s.Edges.Thickness != Defaults().Edges.Thickness {
		t.Errorf("absent key lost its default: %v", s.Edges.Thickness)
	}
	if !s.Nodes.Halo.Enabled || s.Nodes.Halo.Rings != Defaults().Nodes.Halo.Rings {
		t.Errorf("nested table decode wrong: %+v", s.Nodes.Halo)
	}
	if len(unknown) == 0 || !strings.HasPrefix(unknown[0], "mystery") {
		t.Errorf("unknown keys = %v, want mystery.*", unknown)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poster.toml")
	if err := os.WriteFile(path, []byte("tiles = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file code = %v", errors.GetCode(err))
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("tiles = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(bad); !errors.Is(err, errors.ErrCodeInvalidSettings) {
		t.Errorf("invalid file code = %v", errors.GetCode(err))
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	s := Defaults()
	s.Overlay.Kind = OverlayTags
	out, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, _, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Overlay.Kind != OverlayTags || back.Relief.HypsoBands != s.Relief.HypsoBands {
		t.Errorf("round trip mismatch: %+v", back.Overlay)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#F00")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if c.R != 1 || c.G != 0 || c.B != 0 {
		t.Errorf("ParseColor(#F00) = %v", c)
	}
	if _, err := ParseColor("red"); err == nil {
		t.Error("named colours are not supported")
	}

	px := RGBA(c, 0.5)
	if px.A != 128 || px.R != 128 || px.G != 0 {
		t.Errorf("RGBA(red, 0.5) = %v, want premultiplied {128 0 0 128}", px)
	}
}
