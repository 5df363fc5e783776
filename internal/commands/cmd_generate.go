package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/logging"
	"github.com/colonyops/redline/internal/core/session"
)

type GenerateCmd struct {
	flags *Flags
	log   zerolog.Logger
}

func NewGenerateCmd(flags *Flags) *GenerateCmd {
	return &GenerateCmd{flags: flags, log: logging.Component("generate")}
}

func (cmd *GenerateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "generate",
		Usage:     "Create an edit session from a document's marked chunks",
		UsageText: "redline generate <file>",
		Description: `Snapshots the document into a new session workspace and writes one task
artifact per actionable chunk, in execution order. Lock chunks are not
given artifacts; they appear as context inside the other artifacts.

The workspace is a git repository so every applied chunk becomes a
commit that can be inspected and rolled back.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *GenerateCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	sourceFile := c.Args().First()

	state, err := cmd.flags.loadProject(sourceFile)
	if err != nil {
		return err
	}

	mgr := session.NewManager(cmd.log, cmd.flags.GitRepo(), cmd.flags.SessionStore())

	sess, err := mgr.Create(ctx, sourceFile, state)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	fmt.Fprintf(c.Root().Writer, "Created session %s with %d chunk(s)\n", sess.ID, len(sess.Chunks))
	fmt.Fprintf(c.Root().Writer, "Artifacts: %s\n", cmd.flags.SessionStore().Dir(sess.ID))
	return nil
}
