package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/internal/printer"
)

type EditCmd struct {
	flags *Flags
	app   *console.App

	// flags
	yes bool
}

// NewEditCmd creates a new edit command
func NewEditCmd(flags *Flags, app *console.App) *EditCmd {
	return &EditCmd{flags: flags, app: app}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Change fields of a record",
		UsageText: "tally edit <entity> <id> field=value [field=value...]",
		Description: `Updates the given fields of a record. Fields not named keep their value.

Changing a key field of a composite entity (for example the product of a
price) moves the record to its new id.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "confirm prompts without asking",
				Destination: &cmd.yes,
			},
		},
		ShellComplete: EntityCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	args := c.Args().Slice()
	if len(args) < 3 {
		return fmt.Errorf("usage: tally edit <entity> <id> field=value [field=value...]")
	}

	kind, id := args[0], grid.ID(args[1])
	values, err := parseValues(kind, args[2:])
	if err != nil {
		return err
	}

	res, err := cmd.app.Edit(ctx, kind, id, values, promptConfirmer{assumeYes: cmd.yes})
	if err != nil {
		return commitError(p, err)
	}

	switch {
	case res.Outcome == grid.OutcomeUnchanged:
		p.Infof("No changes to %s %s", kind, id)
	case res.Rekeyed:
		p.Successf("Updated %s %s (now %s)", kind, id, res.Row.ID)
	default:
		p.Successf("Updated %s %s", kind, id)
	}
	return nil
}
