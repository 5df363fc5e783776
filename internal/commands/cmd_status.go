package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/store/yamlfile"
)

type StatusCmd struct {
	flags *Flags
}

func NewStatusCmd(flags *Flags) *StatusCmd {
	return &StatusCmd{flags: flags}
}

func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show documents and their marked chunks",
		UsageText: "redline status [file]",
		Description: `Scans the configured folder for documents matching the configured
patterns and reports each document's chunk count. Documents whose content
changed since their chunks were marked are flagged; their recorded ranges
may no longer line up with the text.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() > 1 {
		return fmt.Errorf("expected at most one file argument")
	}
	if c.Args().Len() == 1 {
		return cmd.one(c, c.Args().First())
	}

	docs, err := cmd.flags.Config.Documents()
	if err != nil {
		return fmt.Errorf("scan documents: %w", err)
	}

	if len(docs) == 0 {
		fmt.Fprintf(c.Root().Writer, "No documents match %v under %s\n",
			cmd.flags.Config.Patterns, cmd.flags.Config.Folder)
		return nil
	}

	store := cmd.flags.SidecarStore()

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DOCUMENT\tCHUNKS\tNOTES")

	for _, doc := range docs {
		path := filepath.Join(cmd.flags.Config.Folder, doc)

		state, err := store.Load(path)
		if err != nil {
			if errors.Is(err, yamlfile.ErrNotFound) {
				_, _ = fmt.Fprintf(w, "%s\t-\t\n", doc)
				continue
			}
			_, _ = fmt.Fprintf(w, "%s\t?\t%s\n", doc, err)
			continue
		}

		note := ""
		if changed, err := store.SourceChanged(path, state); err == nil && changed {
			note = "source changed since chunks were marked"
		}

		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", doc, len(state.Chunks), note)
	}

	return w.Flush()
}

// one reports a single document's chunk breakdown.
func (cmd *StatusCmd) one(c *cli.Command, sourceFile string) error {
	state, err := cmd.flags.loadProject(sourceFile)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	store := cmd.flags.SidecarStore()

	actionable := len(state.ChunksInExecutionOrder())
	locks := len(state.LockChunks())

	fmt.Fprintf(out, "%s: %d chunk(s), %d actionable, %d locked\n",
		sourceFile, len(state.Chunks), actionable, locks)

	if changed, err := store.SourceChanged(sourceFile, state); err == nil && changed {
		fmt.Fprintln(out, "warning: source changed since chunks were marked; ranges may be stale")
	}

	return nil
}
