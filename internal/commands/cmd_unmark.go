package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type UnmarkCmd struct {
	flags *Flags
	all   bool
}

func NewUnmarkCmd(flags *Flags) *UnmarkCmd {
	return &UnmarkCmd{flags: flags}
}

func (cmd *UnmarkCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "unmark",
		Usage:     "Remove a chunk from a document",
		UsageText: "redline unmark <file> <chunk-id> | redline unmark <file> --all",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "remove every chunk",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *UnmarkCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("expected a file argument")
	}
	sourceFile := c.Args().First()

	state, err := cmd.flags.loadProject(sourceFile)
	if err != nil {
		return err
	}

	store := cmd.flags.SidecarStore()

	if cmd.all {
		state.Clear()
		if err := store.Save(sourceFile, state); err != nil {
			return err
		}
		fmt.Fprintf(c.Root().Writer, "Removed all chunks from %s\n", sourceFile)
		return nil
	}

	if c.Args().Len() != 2 {
		return fmt.Errorf("expected a chunk id (or --all)")
	}
	chunkID := c.Args().Get(1)

	if !state.RemoveChunk(chunkID) {
		return fmt.Errorf("no chunk %s in %s", chunkID, sourceFile)
	}
	if err := store.Save(sourceFile, state); err != nil {
		return err
	}

	fmt.Fprintf(c.Root().Writer, "Removed %s from %s\n", chunkID, sourceFile)
	return nil
}
