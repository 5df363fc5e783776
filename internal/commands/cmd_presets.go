package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/chunk"
	"github.com/colonyops/redline/internal/core/direction"
)

type PresetsCmd struct {
	category string
}

func NewPresetsCmd() *PresetsCmd {
	return &PresetsCmd{}
}

func (cmd *PresetsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "presets",
		Usage:     "List direction presets",
		UsageText: "redline presets [--category replace|tweak]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "limit to one category",
				Destination: &cmd.category,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *PresetsCmd) run(ctx context.Context, c *cli.Command) error {
	categories := []chunk.Category{chunk.CategoryReplace, chunk.CategoryTweak}
	if cmd.category != "" {
		cat := chunk.Category(cmd.category)
		if !cat.Valid() || cat == chunk.CategoryLock {
			return fmt.Errorf("invalid category %q", cmd.category)
		}
		categories = []chunk.Category{cat}
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CATEGORY\tID\tNAME\tDESCRIPTION")

	for _, cat := range categories {
		for _, p := range direction.ForCategory(cat) {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cat, p.ID, p.Name, p.Description)
		}
	}

	return w.Flush()
}
