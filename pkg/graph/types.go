package graph

import (
	"fmt"
	"math"

	"github.com/matzehuels/netposter/pkg/errors"
)

// Graph is the canonical input format for a render.
type Graph struct {
	// Directed affects pair counting in statistics only.
	Directed bool   `json:"directed,omitempty"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}

// Node is one actor in the network.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label,omitempty"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Size  *float64 `json:"size,omitempty"`
	Color string   `json:"color,omitempty"`
	Flags Flags    `json:"flags,omitempty"`
}

// Flags are optional boolean markers attached to a node.
type Flags struct {
	Draw      bool `json:"draw,omitempty"`      // force the label to be drawn
	Important bool `json:"important,omitempty"` // always painted on top
	Daily     bool `json:"daily,omitempty"`     // active on the rendered day
}

// Edge connects two nodes by id.
type Edge struct {
	Source  string   `json:"source"`
	Target  string   `json:"target"`
	Weight  *float64 `json:"weight,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Daily   bool     `json:"daily,omitempty"`
}

// Event is one row of the broadcast table.
type Event struct {
	NodeID string   `json:"node"`
	Tags   []string `json:"tags"`
}

// HasPosition reports whether both coordinates are present and finite.
func (n *Node) HasPosition() bool {
	return finite(n.X) && finite(n.Y)
}

// HasSize reports whether the size is present and finite.
func (n *Node) HasSize() bool {
	return finite(n.Size)
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// EdgeOpacity returns the per-edge opacity, 1 when unset.
func (e *Edge) EdgeOpacity() float64 {
	if e.Opacity == nil || math.IsNaN(*e.Opacity) {
		return 1
	}
	return math.Max(0, math.Min(1, *e.Opacity))
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Float returns a pointer to v, convenient for building graphs in code.
func Float(v float64) *float64 { return &v }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// NodeIndex maps node ids to their position in Nodes.
func (g *Graph) NodeIndex() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// Validate checks that node ids are unique and non-empty and that every
// edge references existing nodes.
func (g *Graph) Validate() error {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidGraph, "node %d has an empty id", i)
		}
		if _, dup := idx[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidGraph, "duplicate node id %q", n.ID)
		}
		idx[n.ID] = i
	}
	for i, e := range g.Edges {
		if _, ok := idx[e.Source]; !ok {
			return errors.New(errors.ErrCodeInvalidGraph, "edge %d: unknown source %q", i, e.Source)
		}
		if _, ok := idx[e.Target]; !ok {
			return errors.New(errors.ErrCodeInvalidGraph, "edge %d: unknown target %q", i, e.Target)
		}
	}
	return nil
}

// Clone returns a deep copy. The renderer mutates geometry on its own copy
// and never on the caller's graph.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Directed: g.Directed,
		Nodes:    make([]Node, len(g.Nodes)),
		Edges:    make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		n.X = clonePtr(n.X)
		n.Y = clonePtr(n.Y)
		n.Size = clonePtr(n.Size)
		out.Nodes[i] = n
	}
	for i, e := range g.Edges {
		e.Weight = clonePtr(e.Weight)
		e.Opacity = clonePtr(e.Opacity)
		out.Edges[i] = e
	}
	return out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// String implements fmt.Stringer for log lines.
func (g *Graph) String() string {
	return fmt.Sprintf("graph(%d nodes, %d edges)", len(g.Nodes), len(g.Edges))
}
