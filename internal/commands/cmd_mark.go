package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/chunk"
	"github.com/colonyops/redline/internal/core/direction"
	"github.com/colonyops/redline/internal/core/project"
	"github.com/colonyops/redline/internal/store/yamlfile"
)

type MarkCmd struct {
	flags *Flags

	start      string
	end        string
	category   string
	lockType   string
	preset     string
	annotation string
	order      int
}

func NewMarkCmd(flags *Flags) *MarkCmd {
	return &MarkCmd{flags: flags}
}

func (cmd *MarkCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "mark",
		Usage:     "Mark a text range in a document as a chunk",
		UsageText: "redline mark <file> --start ROW:COL --end ROW:COL [options]",
		Description: `Records a chunk over the given range. Rows and columns are zero-based and
the end column is included in the chunk. Ranges may not overlap an
existing chunk.

Categories: replace (rewrite freely), tweak (light-touch edits), and
lock (never edited; supplied to the agent as surrounding context).`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "start",
				Usage:       "range start as ROW:COL",
				Required:    true,
				Destination: &cmd.start,
			},
			&cli.StringFlag{
				Name:        "end",
				Usage:       "range end as ROW:COL (inclusive)",
				Required:    true,
				Destination: &cmd.end,
			},
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "chunk category: replace, tweak, or lock",
				Value:       string(chunk.CategoryReplace),
				Destination: &cmd.category,
			},
			&cli.StringFlag{
				Name:        "lock-type",
				Usage:       "lock flavor: example, reference, or context",
				Value:       string(chunk.LockContext),
				Destination: &cmd.lockType,
			},
			&cli.StringFlag{
				Name:        "direction",
				Aliases:     []string{"d"},
				Usage:       "direction preset id (see presets for the category)",
				Destination: &cmd.preset,
			},
			&cli.StringFlag{
				Name:        "annotation",
				Aliases:     []string{"a"},
				Usage:       "freeform guidance for the agent",
				Destination: &cmd.annotation,
			},
			&cli.IntFlag{
				Name:        "order",
				Usage:       "execution order (lower runs first; unset runs last)",
				Value:       -1,
				Destination: &cmd.order,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *MarkCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	sourceFile := c.Args().First()

	category := chunk.Category(cmd.category)
	if !category.Valid() {
		return fmt.Errorf("invalid category %q", cmd.category)
	}

	var lockType chunk.LockType
	if category == chunk.CategoryLock {
		lockType = chunk.LockType(cmd.lockType)
		if !lockType.Valid() {
			return fmt.Errorf("invalid lock type %q", cmd.lockType)
		}
	}

	if cmd.preset != "" {
		if !presetValidFor(category, cmd.preset) {
			return fmt.Errorf("unknown direction preset %q for category %s", cmd.preset, category)
		}
	}

	start, err := parseLocation(cmd.start)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := parseLocation(cmd.end)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	rng := chunk.TextRange{Start: start, End: end}

	content, err := os.ReadFile(sourceFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", sourceFile, err)
	}

	text, err := chunk.ExtractRange(string(content), rng)
	if err != nil {
		return err
	}

	store := cmd.flags.SidecarStore()
	state, err := store.Load(sourceFile)
	if err != nil {
		if !errors.Is(err, yamlfile.ErrNotFound) {
			return err
		}
		state, err = store.NewProject(sourceFile)
		if err != nil {
			return err
		}
	}

	ch := chunk.Chunk{
		ID:              state.NextChunkID(),
		Range:           rng,
		Category:        category,
		OriginalText:    text,
		DirectionPreset: cmd.preset,
		Annotation:      cmd.annotation,
		LockType:        lockType,
	}
	if cmd.order >= 0 {
		order := cmd.order
		ch.ExecutionOrder = &order
	}

	if err := state.AddChunk(ch); err != nil {
		var overlap *project.OverlapError
		if errors.As(err, &overlap) {
			return fmt.Errorf("range overlaps existing chunk %s", overlap.Existing)
		}
		return err
	}

	if err := store.Save(sourceFile, state); err != nil {
		return err
	}

	fmt.Fprintf(c.Root().Writer, "Marked %s (%s) in %s\n", ch.ID, category, sourceFile)
	return nil
}

func presetValidFor(category chunk.Category, id string) bool {
	for _, p := range direction.ForCategory(category) {
		if p.ID == id {
			return true
		}
	}
	return false
}

// parseLocation parses a "row:col" pair of zero-based offsets.
func parseLocation(s string) (chunk.Location, error) {
	row, col, ok := strings.Cut(s, ":")
	if !ok {
		return chunk.Location{}, fmt.Errorf("expected ROW:COL, got %q", s)
	}

	r, err := strconv.Atoi(row)
	if err != nil {
		return chunk.Location{}, fmt.Errorf("row %q is not a number", row)
	}
	cl, err := strconv.Atoi(col)
	if err != nil {
		return chunk.Location{}, fmt.Errorf("col %q is not a number", col)
	}
	if r < 0 || cl < 0 {
		return chunk.Location{}, fmt.Errorf("row and col must be non-negative")
	}

	return chunk.Location{Row: r, Col: cl}, nil
}
