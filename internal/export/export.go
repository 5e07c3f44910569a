// Package export writes recognized text to disk.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultExtension is appended to output paths that have none.
const DefaultExtension = ".txt"

// ErrEmptyPath is returned when no output path is given.
var ErrEmptyPath = errors.New("output path is empty")

// SaveText writes text as UTF-8 to path and returns the path actually written.
// A path without an extension gets ".txt"; missing parent directories are
// created. Invalid UTF-8 sequences are replaced with U+FFFD.
func SaveText(path, text string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrEmptyPath
	}
	if filepath.Ext(path) == "" {
		path += DefaultExtension
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
