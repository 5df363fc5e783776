// Package chunk defines the span model for marked document regions.
package chunk

import (
	"fmt"
	"strings"
)

// Category determines how a chunk is processed during generation.
type Category string

// Supported chunk categories.
const (
	// CategoryReplace requests a full rewrite of the span.
	CategoryReplace Category = "replace"
	// CategoryTweak requests minor adjustments to the span.
	CategoryTweak Category = "tweak"
	// CategoryLock marks the span as read-only context for other chunks.
	CategoryLock Category = "lock"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryReplace, CategoryTweak, CategoryLock:
		return true
	}
	return false
}

// Display returns the human-readable category label used in task artifacts.
func (c Category) Display() string {
	switch c {
	case CategoryReplace:
		return "Replace"
	case CategoryTweak:
		return "Tweak"
	case CategoryLock:
		return "Lock (context only)"
	}
	return string(c)
}

// LockType describes how the agent should weight a lock chunk's text.
type LockType string

// Supported lock types.
const (
	// LockExample marks text whose style the agent should imitate.
	LockExample LockType = "example"
	// LockReference marks source material the agent may draw on.
	LockReference LockType = "reference"
	// LockContext marks text that merely locates the target in the document.
	LockContext LockType = "context"
)

// Valid reports whether t is a known lock type.
func (t LockType) Valid() bool {
	switch t {
	case LockExample, LockReference, LockContext:
		return true
	}
	return false
}

// Display returns the label used in task artifact context blocks.
func (t LockType) Display() string {
	switch t {
	case LockExample:
		return "Example"
	case LockReference:
		return "Reference"
	case LockContext:
		return "Context"
	}
	return string(t)
}

// Location is a zero-indexed (row, column) position in a document.
// Row is the line index, Col the character offset within the line.
type Location struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

// Before reports whether l precedes other in document order (row-major).
func (l Location) Before(other Location) bool {
	if l.Row != other.Row {
		return l.Row < other.Row
	}
	return l.Col < other.Col
}

// TextRange is a closed range of document positions, start <= end.
type TextRange struct {
	Start Location `yaml:"start"`
	End   Location `yaml:"end"`
}

// Contains reports whether the position (row, col) falls within the range.
func (r TextRange) Contains(row, col int) bool {
	if row < r.Start.Row || row > r.End.Row {
		return false
	}
	if row == r.Start.Row && col < r.Start.Col {
		return false
	}
	if row == r.End.Row && col > r.End.Col {
		return false
	}
	return true
}

// Overlaps reports whether the two ranges share any position. Ranges are
// closed on both ends, so ranges meeting at an identical boundary point
// overlap, while ranges that merely abut (one ends a column before the
// other starts) do not.
func (r TextRange) Overlaps(other TextRange) bool {
	if r.End.Row < other.Start.Row {
		return false
	}
	if r.Start.Row > other.End.Row {
		return false
	}
	if r.End.Row == other.Start.Row && r.End.Col < other.Start.Col {
		return false
	}
	if r.Start.Row == other.End.Row && r.Start.Col > other.End.Col {
		return false
	}
	return true
}

// Chunk is a marked section of the document with edit instructions.
type Chunk struct {
	ID           string    `yaml:"id"`
	Range        TextRange `yaml:"range"`
	Category     Category  `yaml:"category"`
	OriginalText string    `yaml:"original_text"`

	// Populated when directions are assigned.
	DirectionPreset string `yaml:"direction_preset,omitempty"`
	Annotation      string `yaml:"annotation,omitempty"`

	// ExecutionOrder fixes generation order for actionable chunks.
	ExecutionOrder *int `yaml:"execution_order,omitempty"`

	// LockType is meaningful only when Category is CategoryLock.
	LockType LockType `yaml:"lock_type,omitempty"`
}

// NeedsDirection reports whether the chunk requires a direction assignment.
// Lock chunks are context-only and never sent for editing.
func (c Chunk) NeedsDirection() bool {
	return c.Category != CategoryLock
}

// DisplayName returns a short identifier-plus-preview label.
func (c Chunk) DisplayName() string {
	preview := c.OriginalText
	if len(preview) > 30 {
		preview = preview[:30] + "..."
	}
	preview = strings.ReplaceAll(preview, "\n", " ")
	return fmt.Sprintf("%s: %s", c.ID, preview)
}
