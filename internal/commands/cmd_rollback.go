package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/logging"
	"github.com/colonyops/redline/internal/core/patch"
)

type RollbackCmd struct {
	flags *Flags
	log   zerolog.Logger
}

func NewRollbackCmd(flags *Flags) *RollbackCmd {
	return &RollbackCmd{flags: flags, log: logging.Component("rollback")}
}

func (cmd *RollbackCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rollback",
		Usage:     "Undo the last applied chunk in a session's working copy",
		UsageText: "redline rollback <session-id>",
		Description: `Restores the working copy to its state before the most recent applied
chunk and records the rollback as a new commit. Only the session
workspace is touched; if the chunk was also applied to the source
document, revert that by hand.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *RollbackCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one session id argument")
	}

	rec, err := cmd.flags.loadSession(ctx, c.Args().First())
	if err != nil {
		return err
	}

	applier := patch.NewApplier(cmd.log, cmd.flags.GitRepo(), rec.Dir, rec.Session.WorkingFile)

	if err := applier.Rollback(ctx); err != nil {
		return err
	}

	fmt.Fprintf(c.Root().Writer, "Rolled back last chunk in %s\n", rec.Session.ID)
	return nil
}
