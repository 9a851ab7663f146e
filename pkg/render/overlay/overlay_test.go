package overlay

import (
	"context"
	"image"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netposter/pkg/closeness"
	"github.com/matzehuels/netposter/pkg/graph"
	"github.com/matzehuels/netposter/pkg/render/field"
	"github.com/matzehuels/netposter/pkg/render/geometry"
	"github.com/matzehuels/netposter/pkg/render/raster"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

type fakeScene struct {
	layout    *geometry.Layout
	settings  settings.Settings
	events    []graph.Event
	closeness closeness.Result
}

func (s *fakeScene) Layout() *geometry.Layout    { return s.layout }
func (s *fakeScene) Settings() settings.Settings { return s.settings }
func (s *fakeScene) Events() []graph.Event       { return s.events }
func (s *fakeScene) Logger() *log.Logger         { return log.New(io.Discard) }

func (s *fakeScene) Density(ctx context.Context) (*field.Field, error) {
	return field.ComputeDensity(ctx, s.layout.Nodes, s.layout.Width, s.layout.Height, 10, 0, field.Options{})
}

func (s *fakeScene) Proximity(ctx context.Context) (*field.Proximity, error) {
	return field.ComputeProximity(ctx, s.layout.Nodes, s.layout.Width, s.layout.Height, 10, 0, field.Options{})
}

func (s *fakeScene) Closeness(context.Context) (closeness.Result, error) {
	return s.closeness, nil
}

func newScene() *fakeScene {
	s := settings.Defaults()
	s.RenderDPI, s.OutputDPI = 25.4, 25.4 // 1 px per mm
	s.Width, s.Height = 200, 100
	s.Overlay.CellSize = 40
	s.Overlay.FontSize = 12
	s.Overlay.Opacity = 1

	var nodes []geometry.Node
	add := func(id string, x, y float64) {
		nodes = append(nodes, geometry.Node{Index: len(nodes), ID: id, X: x, Y: y, R: 2})
	}
	for i := 0; i < 5; i++ {
		add("l"+string(rune('a'+i)), 40+float64(i%2)*4, 40+float64(i)*3)
		add("r"+string(rune('a'+i)), 160+float64(i%2)*4, 50+float64(i)*3)
	}
	return &fakeScene{
		layout:   &geometry.Layout{Nodes: nodes, Width: 200, Height: 100},
		settings: s,
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind    string
		want    string
		wantErr bool
	}{
		{settings.OverlayNone, "", false},
		{settings.OverlayTags, "tags", false},
		{settings.OverlayCloseness, "closeness", false},
		{settings.OverlayProximity, "proximity", false},
		{"heatmap", "", true},
	}
	for _, tt := range tests {
		o, err := New(tt.kind)
		if (err != nil) != tt.wantErr {
			t.Fatalf("New(%q) error = %v", tt.kind, err)
		}
		if o == nil {
			if tt.want != "" {
				t.Errorf("New(%q) = nil", tt.kind)
			}
			continue
		}
		if o.Name() != tt.want {
			t.Errorf("New(%q).Name() = %q", tt.kind, o.Name())
		}
	}
}

func TestDominant(t *testing.T) {
	tag, n := dominant(map[string]int{"b": 3, "a": 3, "c": 1})
	if tag != "a" || n != 3 {
		t.Errorf("dominant = %s/%d, want a/3", tag, n)
	}
	if tag, n := dominant(nil); tag != "" || n != 0 {
		t.Errorf("dominant(nil) = %s/%d", tag, n)
	}
}

func TestTagRegions(t *testing.T) {
	s := newScene()
	for _, n := range s.layout.Nodes {
		tag := "climate"
		if n.ID[0] == 'r' {
			tag = "budget"
		}
		s.events = append(s.events, graph.Event{NodeID: n.ID, Tags: []string{tag}})
	}
	s.events = append(s.events, graph.Event{NodeID: "la", Tags: []string{"budget"}})

	o := &TagRegions{}
	if err := o.Prepare(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if len(o.Regions) != 2 {
		t.Fatalf("got %d regions, want 2: %+v", len(o.Regions), o.Regions)
	}
	if err := o.Prepare(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if len(o.Regions) != 2 {
		t.Fatalf("second Prepare: got %d regions, want 2", len(o.Regions))
	}
	for _, r := range o.Regions {
		want := "climate"
		if r.X > 100 {
			want = "budget"
		}
		if r.Tag != want {
			t.Errorf("region at x=%v labelled %q, want %q", r.X, r.Tag, want)
		}
	}

	whole := raster.NewLayer(raster.Tile{Bounds: image.Rect(0, 0, 200, 100)})
	o.Draw(whole, raster.Tile{Bounds: whole.Rect})
	drawn := 0
	for i := 3; i < len(whole.Pix); i += 4 {
		if whole.Pix[i] > 0 {
			drawn++
		}
	}
	if drawn == 0 {
		t.Error("no label pixels drawn")
	}
}

func TestTagRegionsWithoutEvents(t *testing.T) {
	o := &TagRegions{}
	if err := o.Prepare(context.Background(), newScene()); err != nil {
		t.Fatal(err)
	}
	if len(o.Regions) != 0 {
		t.Errorf("got %d regions without events", len(o.Regions))
	}
}

func TestClosenessGridInconclusive(t *testing.T) {
	s := newScene()
	s.closeness = closeness.Result{Inconclusive: true, Reason: "no edges"}
	o := &ClosenessGrid{Spacing: 17.3} // left over from a conclusive frame
	if err := o.Prepare(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	l := raster.NewLayer(raster.Tile{Bounds: image.Rect(0, 0, 200, 100)})
	o.Draw(l, raster.Tile{Bounds: l.Rect})
	for _, v := range l.Pix {
		if v != 0 {
			t.Fatal("inconclusive closeness should draw nothing")
		}
	}
}

func TestClosenessGridTiled(t *testing.T) {
	s := newScene()
	s.closeness = closeness.Result{DeltaMax: 17.3, CMax: 0.6}
	o := &ClosenessGrid{}
	if err := o.Prepare(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if o.Spacing != 17.3 {
		t.Fatalf("Spacing = %v", o.Spacing)
	}

	whole := raster.NewLayer(raster.Tile{Bounds: image.Rect(0, 0, 200, 100)})
	o.Draw(whole, raster.Tile{Bounds: whole.Rect})
	// a vertical line passes through the canvas centre
	if a := whole.RGBAAt(100, 10).A; a == 0 {
		t.Error("no grid line at the origin")
	}
	for _, tile := range raster.Tiles(2, 100, 50) {
		part := raster.NewLayer(tile)
		o.Draw(part, tile)
		b := tile.Bounds
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if part.RGBAAt(x, y) != whole.RGBAAt(x, y) {
					t.Fatalf("(%d,%d) differs between tiled and whole grid", x, y)
				}
			}
		}
	}
}

func TestProximityMonitor(t *testing.T) {
	s := newScene()
	o := &ProximityMonitor{}
	if err := o.Prepare(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	l := raster.NewLayer(raster.Tile{Bounds: image.Rect(0, 0, 200, 100)})
	o.Draw(l, raster.Tile{Bounds: l.Rect})
	if a := l.RGBAAt(40, 40).A; a == 0 {
		t.Error("claimed pixel left empty")
	}
	if a := l.RGBAAt(100, 5).A; a != 0 {
		t.Error("unclaimed pixel painted")
	}
	if NodeColor(1) == NodeColor(2) {
		t.Error("neighbouring ids share a colour")
	}
}
