package raster

import (
	"image"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netposter/pkg/fonts"
)

var red = colorful.Color{R: 1}

func full(w, h int) Tile {
	return Tile{Bounds: image.Rect(0, 0, w, h)}
}

func TestTiles(t *testing.T) {
	tiles := Tiles(3, 10, 20)
	if len(tiles) != 9 {
		t.Fatalf("got %d tiles, want 9", len(tiles))
	}
	last := tiles[8]
	if last.Col != 2 || last.Row != 2 || last.Bounds != image.Rect(20, 40, 30, 60) {
		t.Errorf("last tile = %+v", last)
	}
	if tiles[1].Col != 1 || tiles[1].Row != 0 {
		t.Errorf("tiles should be ordered row by row, got %+v", tiles[1])
	}
}

func TestBlend(t *testing.T) {
	l := NewLayer(full(1, 1))
	Blend(l, 0, 0, red, 0.5)
	if got := l.RGBAAt(0, 0); got.R != 128 || got.A != 128 || got.G != 0 {
		t.Errorf("half red over transparent = %v", got)
	}
	Blend(l, 0, 0, colorful.Color{B: 1}, 1)
	if got := l.RGBAAt(0, 0); got.B != 255 || got.R != 0 || got.A != 255 {
		t.Errorf("opaque blue over anything = %v", got)
	}
	Blend(l, 5, 5, red, 1) // outside, ignored
}

func TestDiskCoverage(t *testing.T) {
	l := NewLayer(full(21, 21))
	Disk(l, 10.5, 10.5, 5, red, 1)
	if a := l.RGBAAt(10, 10).A; a != 255 {
		t.Errorf("centre alpha = %d, want 255", a)
	}
	if a := l.RGBAAt(0, 0).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	// pixel centre exactly on the rim is half covered
	if a := l.RGBAAt(15, 10).A; a < 120 || a > 135 {
		t.Errorf("rim alpha = %d, want about 128", a)
	}
}

func TestSegmentButtCaps(t *testing.T) {
	l := NewLayer(full(20, 5))
	Segment(l, 5, 2.5, 15, 2.5, 1, red, 1)
	for x := 5; x < 15; x++ {
		if a := l.RGBAAt(x, 2).A; a != 255 {
			t.Errorf("x=%d alpha = %d, want 255", x, a)
		}
	}
	for _, x := range []int{3, 4, 15, 16} {
		if a := l.RGBAAt(x, 2).A; a != 0 {
			t.Errorf("beyond the cap x=%d alpha = %d, want 0", x, a)
		}
	}
	if a := l.RGBAAt(10, 1).A; a != 0 {
		t.Errorf("beside a 1px line alpha = %d, want 0", a)
	}

	empty := NewLayer(full(5, 5))
	Segment(empty, 2, 2, 2, 2, 3, red, 1)
	for _, v := range empty.Pix {
		if v != 0 {
			t.Fatal("zero-length segment drew something")
		}
	}
}

func drawScene(l *image.RGBA, text *Text) {
	Rect(l, 3.3, 7.1, 40.7, 22.9, colorful.Color{G: 0.5}, 0.4)
	Disk(l, 31.7, 29.2, 9.3, red, 0.8)
	Disk(l, 32, 32, 2, colorful.Color{B: 1}, 1)
	Segment(l, 2.2, 60.1, 61.3, 3.7, 1.7, colorful.Color{R: 0.2, G: 0.2, B: 0.2}, 0.6)
	Segment(l, 32, 0, 32, 64, 0.4, red, 1)
	text.DrawCentered(l, "seam", 32, 40, colorful.Color{}, 1)
}

func TestTiledDrawingMatches(t *testing.T) {
	face, err := fonts.NewFace(fonts.Regular, 14, 72)
	if err != nil {
		t.Fatal(err)
	}
	text := NewText(face)

	whole := NewLayer(full(64, 64))
	drawScene(whole, text)

	for _, tile := range Tiles(2, 32, 32) {
		l := NewLayer(tile)
		drawScene(l, text)
		b := tile.Bounds
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if got, want := l.RGBAAt(x, y), whole.RGBAAt(x, y); got != want {
					t.Fatalf("tile (%d,%d) pixel (%d,%d) = %v, want %v", tile.Col, tile.Row, x, y, got, want)
				}
			}
		}
	}
}

func TestBoxesForGauss(t *testing.T) {
	got := BoxesForGauss(2, 3)
	want := []int{3, 3, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("BoxesForGauss(2, 3) = %v, want %v", got, want)
		}
	}
	if r := BlurReach(2); r != 4 {
		t.Errorf("BlurReach(2) = %d, want 4", r)
	}
	if r := BlurReach(0); r != 0 {
		t.Errorf("BlurReach(0) = %d, want 0", r)
	}
}

func TestBlurUniform(t *testing.T) {
	l := NewLayer(full(16, 16))
	Fill(l, colorful.Color{R: 0.5, G: 0.5, B: 0.5}, 1)
	before := append([]uint8(nil), l.Pix...)
	Blur(l, 3)
	for i := range before {
		if before[i] != l.Pix[i] {
			t.Fatal("blurring a uniform image changed it")
		}
	}
}

func TestBlurImpulse(t *testing.T) {
	l := NewLayer(full(31, 31))
	l.Pix[l.PixOffset(15, 15)+3] = 255
	Blur(l, 2)

	centre := l.Pix[l.PixOffset(15, 15)+3]
	if centre == 0 || centre == 255 {
		t.Fatalf("centre alpha = %d, want spread", centre)
	}
	sum := 0
	for y := 0; y < 31; y++ {
		for x := 0; x < 31; x++ {
			a := l.Pix[l.PixOffset(x, y)+3]
			if mirror := l.Pix[l.PixOffset(30-x, 30-y)+3]; a != mirror {
				t.Fatalf("asymmetric blur at (%d,%d)", x, y)
			}
			sum += int(a)
		}
	}
	if math.Abs(float64(sum)-255) > 60 {
		t.Errorf("blur mass = %d, want about 255", sum)
	}
}

func TestBlurPaddedMatchesWhole(t *testing.T) {
	const sigma = 1.5
	whole := NewLayer(full(40, 40))
	Disk(whole, 20, 20, 6, red, 1)
	Blur(whole, sigma)

	tile := image.Rect(20, 0, 40, 20)
	pad := tile.Inset(-BlurReach(sigma)).Intersect(whole.Rect)
	part := image.NewRGBA(pad)
	Disk(part, 20, 20, 6, red, 1)
	Blur(part, sigma)

	for y := tile.Min.Y; y < tile.Max.Y; y++ {
		for x := tile.Min.X; x < tile.Max.X; x++ {
			if part.RGBAAt(x, y) != whole.RGBAAt(x, y) {
				t.Fatalf("(%d,%d) differs: %v vs %v", x, y, part.RGBAAt(x, y), whole.RGBAAt(x, y))
			}
		}
	}
}

func TestTextMeasure(t *testing.T) {
	face, err := fonts.NewFace(fonts.Regular, 12, 72)
	if err != nil {
		t.Fatal(err)
	}
	text := NewText(face)
	w1, asc, _ := text.Measure("a")
	w2, _, _ := text.Measure("aaaa")
	if w1 <= 0 || asc <= 0 {
		t.Fatalf("Measure = %v, %v", w1, asc)
	}
	if math.Abs(w2-4*w1) > 1 {
		t.Errorf("advance of 4 glyphs = %v, want %v", w2, 4*w1)
	}
}
