package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *console.App

	// flags
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *console.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List the records of an entity",
		UsageText: "tally ls <entity> [--json]",
		Description: `Displays a table of the records of an entity, one column per field.

Use --json for one JSON object per record.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: EntityCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("usage: tally ls <entity>")
	}

	who := access.FromContext(ctx)
	spec, err := cmd.app.Grid(c.Args().First(), who.Role)
	if err != nil {
		return err
	}

	rows, err := cmd.app.Services[spec.Schema.Kind].Fetch(ctx)
	if err != nil {
		return fmt.Errorf("list %s: %w", spec.Schema.Kind, err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range rows {
			if err := iojson.WriteLine(out, recordJSON(r)); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
		}
		return nil
	}

	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "No %s found\n", strings.ToLower(spec.Title))
		return nil
	}

	columns := spec.Schema.Columns
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := make([]string, 0, len(columns)+1)
	header = append(header, "ID")
	for _, col := range columns {
		header = append(header, strings.ToUpper(col.Title))
	}
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, r := range rows {
		cells := make([]string, 0, len(columns)+1)
		cells = append(cells, string(r.ID))
		for _, col := range columns {
			cells = append(cells, col.Format(r.Get(col.Field)))
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	return w.Flush()
}

// recordJSON is the JSON output format for tally ls --json.
func recordJSON(r grid.Row) map[string]any {
	out := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		out[k] = v
	}
	out["id"] = string(r.ID)
	return out
}
