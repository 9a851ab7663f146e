package settings

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/netposter/pkg/errors"
)

// Load decodes the TOML file at path on top of [Defaults] and validates the
// result. Keys the file sets but Settings does not know are returned in
// unknown so the caller can warn about typos.
func Load(path string) (s Settings, unknown []string, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "settings %s", path)
	}
	if err != nil {
		return s, nil, errors.Wrap(errors.ErrCodeIO, err, "settings %s", path)
	}
	return Decode(string(data))
}

// Decode is Load for in-memory TOML.
func Decode(data string) (Settings, []string, error) {
	s := Defaults()
	md, err := toml.Decode(data, &s)
	if err != nil {
		return s, nil, errors.Wrap(errors.ErrCodeInvalidSettings, err, "decode settings")
	}
	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	if err := s.Validate(); err != nil {
		return s, unknown, err
	}
	return s, unknown, nil
}

// Encode renders s as TOML.
func Encode(s Settings) (string, error) {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return "", err
	}
	return buf.String(), nil
}
