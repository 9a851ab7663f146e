package errors

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateOutputPath rejects paths an artifact cannot be written to: empty
// paths, paths with control characters, and paths naming a directory.
// Missing parent directories are fine; writers create them.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "empty output path")
	}
	if strings.IndexFunc(path, unicode.IsControl) >= 0 {
		return New(ErrCodeInvalidPath, "output path %q contains control characters", path)
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return New(ErrCodeInvalidPath, "output path %q is a directory", path)
	}
	return nil
}
