package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
)

type SessionsCmd struct {
	flags *Flags
}

func NewSessionsCmd(flags *Flags) *SessionsCmd {
	return &SessionsCmd{flags: flags}
}

func (cmd *SessionsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sessions",
		Usage:     "List edit sessions",
		UsageText: "redline sessions",
		Action:    cmd.run,
	})
	return app
}

func (cmd *SessionsCmd) run(ctx context.Context, c *cli.Command) error {
	store := cmd.flags.SessionStore()

	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if len(ids) == 0 {
		fmt.Fprintln(c.Root().Writer, "No sessions found")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SESSION\tSTATUS\tCHUNKS\tAPPLIED\tSKIPPED\tSOURCE")

	for _, id := range ids {
		sess, err := store.Load(ctx, id)
		if err != nil {
			_, _ = fmt.Fprintf(w, "%s\t?\t-\t-\t-\t%s\n", id, err)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			sess.ID, sess.Status, len(sess.Chunks),
			len(sess.AppliedChunks), len(sess.SkippedChunks), sess.SourceFile)
	}

	return w.Flush()
}
