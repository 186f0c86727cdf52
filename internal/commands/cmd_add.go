package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/internal/printer"
)

type AddCmd struct {
	flags *Flags
	app   *console.App

	// flags
	yes bool
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *console.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Create a record",
		UsageText: "tally add <entity> field=value [field=value...]",
		Description: `Creates a record with the same validation as the console.

Values are parsed by field type: money accepts 1,250.00, dates use
YYYY-MM-DD and booleans accept yes/no. A likely duplicate asks for
confirmation unless --yes is given.`,
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

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() < 2 {
		return fmt.Errorf("usage: tally add <entity> field=value [field=value...]")
	}

	kind := c.Args().First()
	values, err := parseValues(kind, c.Args().Tail())
	if err != nil {
		return err
	}

	res, err := cmd.app.Create(ctx, kind, values, promptConfirmer{assumeYes: cmd.yes})
	if err != nil {
		return commitError(p, err)
	}

	p.Successf("Created %s %s", kind, res.Row.ID)
	return nil
}

// parseValues parses field=value arguments against the schema of kind.
func parseValues(kind string, args []string) (grid.Values, error) {
	schema, ok := entity.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w %q", console.ErrUnknownEntity, kind)
	}
	values, err := schema.ParseAssignments(args)
	if err != nil {
		return nil, err
	}
	return grid.Values(values), nil
}

// commitError prints per-field validation errors and turns a declined
// confirmation into a non-zero exit.
func commitError(p *printer.Printer, err error) error {
	var verr *grid.ValidationError
	switch {
	case errors.As(err, &verr) && len(verr.Fields()) > 0:
		for _, fe := range verr.Fields() {
			p.Errorf("%s: %s", fe.Field, fe.Err)
		}
		return cli.Exit("", 1)
	case errors.Is(err, grid.ErrCommitAborted):
		p.Infof("Not saved")
		return cli.Exit("", 1)
	default:
		return err
	}
}
