package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/logging"
	"github.com/colonyops/redline/internal/core/patch"
	"github.com/colonyops/redline/internal/core/review"
)

type ReviewCmd struct {
	flags *Flags
	log   zerolog.Logger

	approve    []string
	deny       []string
	approveAll bool
	denyAll    bool
	show       string
}

func NewReviewCmd(flags *Flags) *ReviewCmd {
	return &ReviewCmd{flags: flags, log: logging.Component("review")}
}

func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "review",
		Usage:     "Review agent responses and apply or skip them",
		UsageText: "redline review <session-id> [--approve ID]... [--deny ID]... [--show ID]",
		Description: `Without decision flags, lists the session's pending chunks. Approving a
chunk patches its response into the working copy and the source document
and commits the working copy; denying skips it. Once every chunk is
decided the session completes and the document's chunk marks are
cleared.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "approve",
				Usage:       "approve a chunk (repeatable)",
				Destination: &cmd.approve,
			},
			&cli.StringSliceFlag{
				Name:        "deny",
				Usage:       "deny a chunk (repeatable)",
				Destination: &cmd.deny,
			},
			&cli.BoolFlag{
				Name:        "approve-all",
				Usage:       "approve every pending chunk that has a response",
				Destination: &cmd.approveAll,
			},
			&cli.BoolFlag{
				Name:        "deny-all",
				Usage:       "deny every pending chunk",
				Destination: &cmd.denyAll,
			},
			&cli.StringFlag{
				Name:        "show",
				Usage:       "print a chunk's original text and response",
				Destination: &cmd.show,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ReviewCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one session id argument")
	}

	rec, err := cmd.flags.loadSession(ctx, c.Args().First())
	if err != nil {
		return err
	}

	state, err := cmd.flags.loadProject(rec.Session.SourceFile)
	if err != nil {
		return err
	}

	applier := patch.NewApplier(cmd.log, cmd.flags.GitRepo(), rec.Dir, rec.Session.WorkingFile)

	r, err := review.New(ctx, cmd.log, rec.Session, state, rec.Dir, applier, rec.Store, cmd.flags.SidecarStore())
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.show != "" {
		return cmd.showChunk(out, r, cmd.show)
	}

	if cmd.approveAll && cmd.denyAll {
		return fmt.Errorf("--approve-all and --deny-all are mutually exclusive")
	}

	if len(cmd.approve) == 0 && len(cmd.deny) == 0 && !cmd.approveAll && !cmd.denyAll {
		return cmd.list(out, r)
	}

	if cmd.approveAll || cmd.denyAll {
		for _, ch := range r.Chunks() {
			if ch.Decision != review.DecisionPending {
				continue
			}
			switch {
			case cmd.denyAll:
				cmd.deny = append(cmd.deny, ch.ChunkID)
			case ch.Err == nil && ch.Data.HasResponse:
				cmd.approve = append(cmd.approve, ch.ChunkID)
			default:
				fmt.Fprintf(out, "Skipping %s: no response to approve\n", ch.ChunkID)
			}
		}
	}

	for _, id := range cmd.deny {
		if err := r.Focus(id); err != nil {
			return err
		}
		if err := r.Deny(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "Denied %s\n", id)
	}

	for _, id := range cmd.approve {
		if err := r.Focus(id); err != nil {
			return err
		}
		if err := r.Approve(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "Approved %s\n", id)
	}

	if r.Done() {
		fmt.Fprintf(out, "Review complete: %d applied, %d skipped\n",
			len(rec.Session.AppliedChunks), len(rec.Session.SkippedChunks))
		return nil
	}

	fmt.Fprintf(out, "%d chunk(s) still pending\n", r.Remaining())
	return nil
}

func (cmd *ReviewCmd) list(out io.Writer, r *review.Reviewer) error {
	chunks := r.Chunks()
	if len(chunks) == 0 {
		fmt.Fprintln(out, "Nothing to review")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CHUNK\tDECISION\tRESPONSE")

	for _, ch := range chunks {
		response := "yes"
		switch {
		case ch.Err != nil:
			response = "unreadable"
		case !ch.Data.HasResponse:
			response = "missing"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", ch.ChunkID, ch.Decision, response)
	}

	return w.Flush()
}

func (cmd *ReviewCmd) showChunk(out io.Writer, r *review.Reviewer, id string) error {
	for _, ch := range r.Chunks() {
		if ch.ChunkID != id {
			continue
		}
		if ch.Err != nil {
			return fmt.Errorf("chunk %s: %w", id, ch.Err)
		}

		fmt.Fprintf(out, "--- original\n%s\n", ch.Data.OriginalText)
		if ch.Data.HasResponse {
			fmt.Fprintf(out, "--- response\n%s\n", ch.Data.Response)
		} else {
			fmt.Fprintln(out, "--- no response yet")
		}
		return nil
	}
	return fmt.Errorf("chunk %s is not part of this review", id)
}
