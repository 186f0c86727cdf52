package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	initcmd "github.com/colonyops/tally/internal/commands/init"
	"github.com/colonyops/tally/internal/core/config"
)

type InitCmd struct {
	flags   *Flags
	yes     bool
	force   bool
	backend string
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Initialize tally configuration with an interactive wizard",
		UsageText: "tally init [options]",
		Description: `Sets up tally for first-time use with an interactive wizard.

The wizard asks where records are stored (a local SQLite file or a
DynamoDB table) and which theme to use, then writes
~/.config/tally/config.yaml with the default roles.

Use --yes to accept all defaults without prompts.
Use --force to overwrite existing configuration.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
			&cli.StringFlag{
				Name:        "backend",
				Usage:       "record backend (sqlite, dynamodb)",
				Destination: &cmd.backend,
				Validator: func(s string) error {
					if s == config.BackendSQLite || s == config.BackendDynamoDB {
						return nil
					}
					return cli.Exit("backend must be sqlite or dynamodb", 1)
				},
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, _ *cli.Command) error {
	wizard := initcmd.NewWizard(initcmd.WizardOptions{
		ConfigPath: cmd.flags.ConfigPath,
		DataDir:    cmd.flags.DataDir,
		Yes:        cmd.yes,
		Force:      cmd.force,
		Backend:    cmd.backend,
	})
	return wizard.Run(ctx)
}
