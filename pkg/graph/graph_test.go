package graph

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/netposter/pkg/errors"
)

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantCode errors.Code
		check    func(t *testing.T, g *Graph)
	}{
		{
			name:  "Empty",
			input: `{"nodes": [], "edges": []}`,
			check: func(t *testing.T, g *Graph) {
				if g.NodeCount() != 0 || g.EdgeCount() != 0 {
					t.Errorf("got %s, want empty", g)
				}
			},
		},
		{
			name:  "MissingAttributes",
			input: `{"nodes": [{"id": "a"}, {"id": "b", "x": 0, "y": 2}], "edges": [{"source": "a", "target": "b"}]}`,
			check: func(t *testing.T, g *Graph) {
				if g.Nodes[0].HasPosition() {
					t.Error("node a should have no position")
				}
				if !g.Nodes[1].HasPosition() {
					t.Error("node b should have a position (x=0 is present)")
				}
				if g.Nodes[1].HasSize() {
					t.Error("node b should have no size")
				}
			},
		},
		{
			name:     "UnknownTarget",
			input:    `{"nodes": [{"id": "a"}], "edges": [{"source": "a", "target": "z"}]}`,
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name:     "DuplicateID",
			input:    `{"nodes": [{"id": "a"}, {"id": "a"}], "edges": []}`,
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name:     "Malformed",
			input:    `{"nodes": [`,
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidGraph,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadJSON(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, tt.wantCode) {
					t.Errorf("code = %v, want %v", errors.GetCode(err), tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestHasPositionRejectsNonFinite(t *testing.T) {
	n := Node{ID: "a", X: Float(math.NaN()), Y: Float(1)}
	if n.HasPosition() {
		t.Error("NaN x should count as missing")
	}
	n.X = Float(math.Inf(1))
	if n.HasPosition() {
		t.Error("Inf x should count as missing")
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a", X: Float(1), Y: Float(2), Size: Float(3)}},
		Edges: []Edge{{Source: "a", Target: "a", Opacity: Float(0.5)}},
	}
	c := g.Clone()
	*c.Nodes[0].X = 100
	*c.Edges[0].Opacity = 0.1
	c.Nodes[0].ID = "changed"

	if *g.Nodes[0].X != 1 {
		t.Errorf("original X mutated: %v", *g.Nodes[0].X)
	}
	if *g.Edges[0].Opacity != 0.5 {
		t.Errorf("original opacity mutated: %v", *g.Edges[0].Opacity)
	}
	if g.Nodes[0].ID != "a" {
		t.Errorf("original id mutated: %v", g.Nodes[0].ID)
	}
}

func TestEdgeOpacity(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want float64
	}{
		{"unset", nil, 1},
		{"half", Float(0.5), 0.5},
		{"clamped high", Float(3), 1},
		{"clamped low", Float(-1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Edge{Opacity: tt.in}
			if got := e.EdgeOpacity(); got != tt.want {
				t.Errorf("EdgeOpacity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	g := &Graph{
		Directed: true,
		Nodes: []Node{
			{ID: "a", Label: "Alice", X: Float(1), Y: Float(-2), Size: Float(4), Color: "#ff0000"},
			{ID: "b", Flags: Flags{Important: true}},
		},
		Edges: []Edge{{Source: "a", Target: "b", Weight: Float(2)}},
	}
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !back.Directed || back.Nodes[0].Label != "Alice" || !back.Nodes[1].Flags.Important {
		t.Errorf("round trip lost data: %+v", back)
	}
	if back.Nodes[1].X != nil {
		t.Error("missing x should stay missing after round trip")
	}
}

func TestImportJSONNotFound(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestImportEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	data := `[{"node": "a", "tags": ["climate", " ", "energy"]}, {"node": "b", "tags": []}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, err := ImportEvents(path)
	if err != nil {
		t.Fatalf("ImportEvents: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(rows[0].Tags) != 2 || rows[0].Tags[1] != "energy" {
		t.Errorf("blank tag should be dropped, got %v", rows[0].Tags)
	}

	if _, err := ReadEvents(strings.NewReader(`[{"tags": ["x"]}]`)); err == nil {
		t.Error("row without node id should fail")
	}
}
