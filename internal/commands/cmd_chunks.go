package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/chunk"
)

type ChunksCmd struct {
	flags *Flags
}

func NewChunksCmd(flags *Flags) *ChunksCmd {
	return &ChunksCmd{flags: flags}
}

func (cmd *ChunksCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "chunks",
		Usage:     "List chunks marked in a document",
		UsageText: "redline chunks <file>",
		Action:    cmd.run,
	})
	return app
}

func (cmd *ChunksCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	sourceFile := c.Args().First()

	state, err := cmd.flags.loadProject(sourceFile)
	if err != nil {
		return err
	}

	if len(state.Chunks) == 0 {
		fmt.Fprintf(c.Root().Writer, "No chunks in %s\n", sourceFile)
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCATEGORY\tRANGE\tORDER\tPREVIEW")

	for _, ch := range state.Chunks {
		category := ch.Category.Display()
		if ch.Category == chunk.CategoryLock {
			category = fmt.Sprintf("%s (%s)", category, ch.LockType.Display())
		}

		order := "-"
		if ch.ExecutionOrder != nil {
			order = fmt.Sprintf("%d", *ch.ExecutionOrder)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d:%d-%d:%d\t%s\t%s\n",
			ch.ID, category,
			ch.Range.Start.Row, ch.Range.Start.Col, ch.Range.End.Row, ch.Range.End.Col,
			order, ch.DisplayName())
	}

	return w.Flush()
}
