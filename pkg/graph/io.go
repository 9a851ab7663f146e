package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/netposter/pkg/errors"
)

// ReadJSON decodes a graph from r and validates it.
//
// ReadJSON returns an error if the JSON is malformed, a node id is empty or
// duplicated, or an edge references an unknown node. Missing coordinates,
// sizes and colours are not errors; the renderer recovers from them.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode graph")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// ImportJSON reads and validates the graph file at path.
func ImportJSON(path string) (*Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	g, err := ReadJSON(f)
	if err != nil {
		return nil, errors.Wrap("", err, "%s", path)
	}
	return g, nil
}

// WriteJSON encodes g as indented JSON.
func WriteJSON(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// Marshal returns the canonical bytes of g, used for cache keys.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadEvents decodes a broadcast table. Rows with blank tags keep only
// their valid tags; rows without a node id are rejected.
func ReadEvents(r io.Reader) ([]Event, error) {
	var rows []Event
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode events")
	}
	for i := range rows {
		if rows[i].NodeID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "event %d has no node id", i)
		}
		tags := rows[i].Tags[:0]
		for _, t := range rows[i].Tags {
			if validTag(t) {
				tags = append(tags, t)
			}
		}
		rows[i].Tags = tags
	}
	return rows, nil
}

// maxTagLen bounds tags so that a corrupt row cannot blow up label layout.
const maxTagLen = 128

func validTag(t string) bool {
	return strings.TrimSpace(t) != "" && len(t) <= maxTagLen
}

// ImportEvents reads the broadcast table at path.
func ImportEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return ReadEvents(f)
}
