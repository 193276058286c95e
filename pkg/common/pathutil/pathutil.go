// Package pathutil keeps file names supplied by configuration or the user
// inside a base directory.
package pathutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrOutsideBase = errors.New("path outside base directory not allowed")

// SafePath joins filename onto baseDir and rejects absolute names and any
// result that escapes baseDir.
func SafePath(baseDir, filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return "", fmt.Errorf("%w: absolute filename %q", ErrOutsideBase, filename)
	}
	if strings.Contains(filename, "..") {
		return "", fmt.Errorf("%w: %q", ErrOutsideBase, filename)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	full := filepath.Join(absBase, filepath.Clean(filename))

	prefix := absBase
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if full != absBase && !strings.HasPrefix(full, prefix) {
		return "", fmt.Errorf("%w: %q", ErrOutsideBase, filename)
	}
	return full, nil
}

// SanitizeName maps a user label onto characters safe for a file name.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" {
		return "default"
	}
	return name
}
