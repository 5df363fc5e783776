package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/redline/internal/core/config"
)

type InitCmd struct {
	flags *Flags
	force bool
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Initialize a redline workspace in the current directory",
		UsageText: "redline init [--force]",
		Description: `Creates the .redline/ data directory with a default config.yaml and a
sessions directory. Safe to re-run; existing config is left alone unless
--force is given.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	dataDir := cmd.flags.DataDir
	if err := os.MkdirAll(filepath.Join(dataDir, DefaultSessionsDir), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	configPath := cmd.flags.ConfigPath
	if _, err := os.Stat(configPath); err == nil && !cmd.force {
		fmt.Fprintf(c.Root().Writer, "Config already exists at %s (use --force to overwrite)\n", configPath)
		return nil
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(c.Root().Writer, "Initialized redline workspace at %s\n", dataDir)
	return nil
}
