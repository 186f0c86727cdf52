package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/internal/printer"
)

type RmCmd struct {
	flags *Flags
	app   *console.App

	// flags
	yes bool
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags, app *console.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Delete a record",
		UsageText: "tally rm <entity> <id> [--yes]",
		Description: `Deletes a record after confirmation.

Without a terminal on stdin the confirmation cannot be asked; pass --yes.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "delete without asking",
				Destination: &cmd.yes,
			},
		},
		ShellComplete: EntityCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: tally rm <entity> <id>")
	}

	kind, id := c.Args().Get(0), grid.ID(c.Args().Get(1))
	deleted, err := cmd.app.Remove(ctx, kind, id, promptConfirmer{assumeYes: cmd.yes})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}

	if !deleted {
		p.Infof("Kept %s %s", kind, id)
		return nil
	}
	p.Successf("Deleted %s %s", kind, id)
	return nil
}
