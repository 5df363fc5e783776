package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/logging"
	"github.com/colonyops/redline/internal/core/patch"
)

type DiffCmd struct {
	flags *Flags
	log   zerolog.Logger
}

func NewDiffCmd(flags *Flags) *DiffCmd {
	return &DiffCmd{flags: flags, log: logging.Component("diff")}
}

func (cmd *DiffCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "diff",
		Usage:     "Show the change introduced by the last applied chunk",
		UsageText: "redline diff <session-id>",
		Action:    cmd.run,
	})
	return app
}

func (cmd *DiffCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one session id argument")
	}

	rec, err := cmd.flags.loadSession(ctx, c.Args().First())
	if err != nil {
		return err
	}

	applier := patch.NewApplier(cmd.log, cmd.flags.GitRepo(), rec.Dir, rec.Session.WorkingFile)

	diff, err := applier.LastDiff(ctx)
	if err != nil {
		return err
	}

	if diff == "" {
		fmt.Fprintln(c.Root().Writer, "No changes")
		return nil
	}

	fmt.Fprint(c.Root().Writer, diff)
	return nil
}
