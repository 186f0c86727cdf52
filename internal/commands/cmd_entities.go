package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/pkg/iojson"
)

type EntitiesCmd struct {
	flags *Flags
	app   *console.App

	// flags
	jsonOutput bool
}

// NewEntitiesCmd creates a new entities command
func NewEntitiesCmd(flags *Flags, app *console.App) *EntitiesCmd {
	return &EntitiesCmd{flags: flags, app: app}
}

// Register adds the entities command to the application
func (cmd *EntitiesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "entities",
		Usage:     "List the entities the current role can see",
		UsageText: "tally entities [--json]",
		Description: `Shows each visible entity with its editing mode and what the
current role may do with it.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// entityInfo is the JSON output format for tally entities --json.
type entityInfo struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Mode    string   `json:"mode"`
	Keys    []string `json:"keys,omitempty"`
	Actions []string `json:"actions"`
}

func (cmd *EntitiesCmd) run(ctx context.Context, c *cli.Command) error {
	who := access.FromContext(ctx)
	out := c.Root().Writer

	var infos []entityInfo
	for _, spec := range cmd.app.Grids(who.Role) {
		mode := "inline"
		if spec.Config.Dialog != nil {
			mode = "dialog"
		}
		infos = append(infos, entityInfo{
			Kind:    string(spec.Schema.Kind),
			Title:   spec.Title,
			Mode:    mode,
			Keys:    spec.Schema.KeyFields,
			Actions: actionNames(spec.Config.Capabilities),
		})
	}

	if cmd.jsonOutput {
		for _, info := range infos {
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode entity: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENTITY\tTITLE\tMODE\tACTIONS")
	for _, info := range infos {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Kind, info.Title, info.Mode, strings.Join(info.Actions, ","))
	}
	return w.Flush()
}

func actionNames(c grid.Capabilities) []string {
	names := []string{"view"}
	if c.Addable {
		names = append(names, "add")
	}
	if c.Editable {
		names = append(names, "edit")
	}
	if c.Deletable {
		names = append(names, "delete")
	}
	return names
}
