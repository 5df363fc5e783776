// Package patch applies replacement text by re-locating the anchor text
// captured at marking time. Chunks are applied one at a time and earlier
// replacements shift line positions, so stored coordinates are never used
// to locate a chunk; only its captured text is.
package patch

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrAnchorNotFound indicates the captured original text no longer appears in
// the document, exactly or whitespace-stripped. Callers must not mutate the
// document when this is returned.
var ErrAnchorNotFound = errors.New("anchor text not found")

// Replace substitutes the first occurrence of original in content with
// replacement. Line endings are normalized to LF before matching. When the
// exact text is absent, a whitespace-stripped match is attempted with a
// correspondingly stripped replacement. On failure the input content is
// returned unchanged with ok false.
func Replace(content, original, replacement string) (result string, ok bool) {
	if original == "" {
		return content, false
	}

	normContent := strings.ReplaceAll(content, "\r\n", "\n")
	normOriginal := strings.ReplaceAll(original, "\r\n", "\n")

	if !strings.Contains(normContent, normOriginal) {
		stripped := strings.TrimSpace(normOriginal)
		if stripped != "" && strings.Contains(normContent, stripped) {
			return strings.Replace(normContent, stripped, strings.TrimSpace(replacement), 1), true
		}
		return content, false
	}

	return strings.Replace(normContent, normOriginal, replacement, 1), true
}

// ApplyToFile replaces original with replacement in the file at path.
// Returns ErrAnchorNotFound if the text cannot be located; the file is left
// untouched in every failure case.
func ApplyToFile(path, original, replacement string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	result, ok := Replace(string(data), original, replacement)
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrAnchorNotFound)
	}

	if err := os.WriteFile(path, []byte(result), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Contains reports whether the expected text appears in content after line
// ending normalization.
func Contains(content, expected string) bool {
	if expected == "" {
		return false
	}
	normContent := strings.ReplaceAll(content, "\r\n", "\n")
	normExpected := strings.ReplaceAll(expected, "\r\n", "\n")
	return strings.Contains(normContent, normExpected)
}
