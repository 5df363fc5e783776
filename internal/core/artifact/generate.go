// Package artifact generates and parses the self-contained task files handed
// to the external agent, one per actionable chunk.
package artifact

import (
	"fmt"
	"os"
	"strings"

	"github.com/colonyops/redline/internal/core/chunk"
	"github.com/colonyops/redline/internal/core/direction"
)

// TargetMarker delimits where the target chunk's text sits relative to the
// surrounding lock chunks in the document context block.
const TargetMarker = ">>> TARGET TEXT APPEARS HERE <<<"

// responsePrompt is the fixed line preceding the response separator.
const responsePrompt = "Write ONLY the edited text below. Do not include explanations or the original text."

// Generate renders the task artifact for one actionable chunk. The locks
// slice must contain the project's lock chunks in document order; they are
// partitioned around the target's start row to rebuild the document's shape
// for the agent.
func Generate(c chunk.Chunk, locks []chunk.Chunk) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Edit Task: %s\n\n", c.ID)
	fmt.Fprintf(&b, "**Category:** %s\n\n", c.Category.Display())

	b.WriteString("## Instructions\n\n")
	b.WriteString(instructions(c))
	b.WriteString("\n\n")

	if len(locks) > 0 {
		writeContextBlock(&b, c, locks)
	}

	b.WriteString("## Text to Edit\n\n")
	b.WriteString("```\n")
	b.WriteString(c.OriginalText)
	b.WriteString("\n```\n\n")

	b.WriteString("## Your Response\n\n")
	b.WriteString(responsePrompt)
	b.WriteString("\n\n---\n")

	return b.String()
}

// instructions resolves the chunk's instruction text: rendered preset,
// bare annotation, or a category default.
func instructions(c chunk.Chunk) string {
	if c.DirectionPreset != "" {
		if p, ok := direction.ByID(c.DirectionPreset); ok {
			rendered := p.Render(c.Annotation)
			if rendered != "" {
				return fmt.Sprintf("**Direction:** %s\n\n%s", p.Name, rendered)
			}
		}
	}
	if c.Annotation != "" {
		return c.Annotation
	}

	switch c.Category {
	case chunk.CategoryReplace:
		return "Edit or rewrite this text as appropriate."
	case chunk.CategoryTweak:
		return "Make minor adjustments to improve this text."
	}
	return "Edit this text as appropriate."
}

// writeContextBlock renders the lock chunks split before/after the target's
// start row, each labeled with its lock type so the agent knows how to
// weight it.
func writeContextBlock(b *strings.Builder, target chunk.Chunk, locks []chunk.Chunk) {
	b.WriteString("## Document Context\n\n")
	b.WriteString("Read-only material from the same document. Example blocks show the desired style, ")
	b.WriteString("reference blocks are source material, context blocks locate the target.\n\n")

	var before, after []chunk.Chunk
	for _, l := range locks {
		if l.Range.Start.Row < target.Range.Start.Row {
			before = append(before, l)
		} else {
			after = append(after, l)
		}
	}

	for _, l := range before {
		writeLock(b, l)
	}
	b.WriteString(TargetMarker + "\n\n")
	for _, l := range after {
		writeLock(b, l)
	}
}

func writeLock(b *strings.Builder, l chunk.Chunk) {
	label := l.LockType.Display()
	if label == "" {
		label = chunk.LockContext.Display()
	}
	fmt.Fprintf(b, "**%s:**\n\n```\n%s\n```\n\n", label, l.OriginalText)
}

// AppendResponse appends the agent's output after the response separator in
// the artifact at path. The text is trimmed so the file ends with exactly the
// response followed by a newline.
func AppendResponse(path, text string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString("\n" + strings.TrimSpace(text) + "\n"); err != nil {
		return fmt.Errorf("append response to %s: %w", path, err)
	}
	return nil
}
