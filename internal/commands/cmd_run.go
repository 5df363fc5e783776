package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/agent"
	"github.com/colonyops/redline/internal/core/logging"
	"github.com/colonyops/redline/pkg/executil"
)

type RunCmd struct {
	flags *Flags
	log   zerolog.Logger

	quiet bool
}

func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags, log: logging.Component("run")}
}

func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run the agent over a session's unanswered chunks",
		UsageText: "redline run <session-id> [--quiet]",
		Description: `Invokes the configured agent once per unanswered artifact, in session
order, appending each response to its artifact. Artifacts that already
have a response are skipped, so an interrupted run can be resumed.

Interrupt with Ctrl-C to stop after the in-flight chunk.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "suppress streamed agent output",
				Destination: &cmd.quiet,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one session id argument")
	}

	rec, err := cmd.flags.loadSession(ctx, c.Args().First())
	if err != nil {
		return err
	}

	runner := agent.NewCLIRunner(
		cmd.log,
		&executil.RealExecutor{},
		cmd.flags.Config.Agent.Command,
		cmd.flags.Config.Agent.Args,
	)
	exec := agent.NewSessionExecutor(cmd.log, runner, rec.Dir)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	go func() {
		if _, ok := <-sigs; ok {
			fmt.Fprintln(os.Stderr, "\nStopping after current chunk...")
			exec.Cancel()
		}
	}()

	out := c.Root().Writer
	failures := 0
	printed := 0

	for p := range exec.Execute(ctx, rec.Session) {
		switch p.Status {
		case agent.StatusStarting:
			printed = 0
			fmt.Fprintf(out, "[%d/%d] %s\n", p.ChunkIndex+1, p.Total, p.ChunkID)
		case agent.StatusStreaming:
			// Streaming events carry cumulative output; print only the tail.
			if !cmd.quiet && len(p.Text) > printed {
				fmt.Fprint(out, p.Text[printed:])
				printed = len(p.Text)
			}
		case agent.StatusDone:
			if !cmd.quiet {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "[%d/%d] %s done\n", p.ChunkIndex+1, p.Total, p.ChunkID)
		case agent.StatusError:
			failures++
			fmt.Fprintf(out, "[%d/%d] %s failed: %s\n", p.ChunkIndex+1, p.Total, p.ChunkID, p.Text)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d chunk(s) failed; re-run to retry them", failures)
	}

	fmt.Fprintf(out, "Session %s ready for review\n", rec.Session.ID)
	return nil
}
