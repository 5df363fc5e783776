package chunk

import (
	"fmt"
	"strings"
)

// ExtractRange returns the verbatim text covered by r in content. Columns are
// character offsets and the range is closed, so the character at End.Col is
// included. Column bounds beyond a line's length clip to the line end.
func ExtractRange(content string, r TextRange) (string, error) {
	if r.End.Before(r.Start) {
		return "", fmt.Errorf("range end %d:%d precedes start %d:%d",
			r.End.Row, r.End.Col, r.Start.Row, r.Start.Col)
	}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if r.Start.Row < 0 || r.End.Row >= len(lines) {
		return "", fmt.Errorf("range rows %d-%d outside document of %d lines",
			r.Start.Row, r.End.Row, len(lines))
	}

	var parts []string
	for row := r.Start.Row; row <= r.End.Row; row++ {
		line := []rune(lines[row])

		lo := 0
		if row == r.Start.Row {
			lo = min(r.Start.Col, len(line))
		}
		hi := len(line)
		if row == r.End.Row {
			hi = min(r.End.Col+1, len(line))
		}
		if lo > hi {
			lo = hi
		}

		parts = append(parts, string(line[lo:hi]))
	}

	return strings.Join(parts, "\n"), nil
}
