package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	categoryRe  = regexp.MustCompile(`\*\*Category:\*\*\s*(.+)`)
	directionRe = regexp.MustCompile(`\*\*Direction:\*\*\s*(.+)`)
	originalRe  = regexp.MustCompile("(?s)## Text to Edit\\s*\n\\s*```\\s*\n(.*?)```")
	responseRe  = regexp.MustCompile(`(?s)## Your Response.*?---\s*\n(.*)`)
)

// ChunkData is the parsed content of a task artifact.
type ChunkData struct {
	ChunkID      string
	Category     string
	Direction    string
	OriginalText string
	Response     string
	HasResponse  bool
}

// Parse extracts the artifact components from content. A response is present
// iff non-whitespace text follows the `---` separator in the response
// section; a missing separator or a blank tail means "no response yet" and is
// never an error.
func Parse(chunkID, content string) ChunkData {
	d := ChunkData{
		ChunkID:  chunkID,
		Category: "Unknown",
	}

	if m := categoryRe.FindStringSubmatch(content); m != nil {
		d.Category = strings.TrimSpace(m[1])
	}
	if m := directionRe.FindStringSubmatch(content); m != nil {
		d.Direction = strings.TrimSpace(m[1])
	}
	if m := originalRe.FindStringSubmatch(content); m != nil {
		d.OriginalText = strings.TrimSpace(m[1])
	}
	if m := responseRe.FindStringSubmatch(content); m != nil {
		response := strings.TrimSpace(m[1])
		if response != "" {
			d.Response = response
			d.HasResponse = true
		}
	}

	return d
}

// ParseFile reads and parses the artifact at path. The chunk id is derived
// from the filename stem.
func ParseFile(path string) (ChunkData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChunkData{}, fmt.Errorf("read artifact %s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(stem, string(data)), nil
}

// HasResponse reports whether artifact content already carries agent output
// after the response separator.
func HasResponse(content string) bool {
	m := responseRe.FindStringSubmatch(content)
	return m != nil && strings.TrimSpace(m[1]) != ""
}
