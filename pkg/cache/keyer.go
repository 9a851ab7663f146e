package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Keyer derives cache keys.
type Keyer interface {
	// GraphKey identifies a graph together with its event table.
	GraphKey(graphHash, eventsHash string) string
	// ArtifactKey identifies one rendered output of a graph.
	ArtifactKey(graphKey string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds everything besides the graph that changes the bytes
// of an artifact.
type ArtifactKeyOpts struct {
	Format       string `json:"format"`
	SettingsHash string `json:"settings"`
	Overlay      string `json:"overlay,omitempty"`
	Version      string `json:"version,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(graphHash, eventsHash string) string {
	return hashKey("graph", graphHash, eventsHash)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(graphKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphKey, opts)
}

// hashKey returns "prefix:" followed by the SHA-256 of the JSON encoding of
// parts. Struct parts hash by field name, so adding an omitempty field keeps
// old keys valid.
func hashKey(prefix string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = fmt.Append(nil, parts...)
	}
	return fmt.Sprintf("%s:%x", prefix, sha256.Sum256(data))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
