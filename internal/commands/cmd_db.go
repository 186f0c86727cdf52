package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/data/db"
	"github.com/colonyops/tally/internal/printer"
	"github.com/colonyops/tally/pkg/iojson"
)

type DBCmd struct {
	flags *Flags
	app   *console.App

	// flags
	steps  int
	yes    bool
	asJSON bool
}

type migrationJSON struct {
	Version   int    `json:"version"`
	Name      string `json:"name"`
	Applied   bool   `json:"applied"`
	AppliedAt string `json:"applied_at,omitempty"`
}

// NewDBCmd creates a new db command
func NewDBCmd(flags *Flags, app *console.App) *DBCmd {
	return &DBCmd{flags: flags, app: app}
}

// Register adds the db command to the application
func (cmd *DBCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "db",
		Usage: "Local database maintenance",
		Commands: []*cli.Command{
			{
				Name:      "status",
				Usage:     "List schema migrations and whether they are applied",
				UsageText: "tally db status [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.asJSON,
					},
				},
				Action: cmd.runStatus,
			},
			{
				Name:      "rollback",
				Usage:     "Revert the most recent schema migrations",
				UsageText: "tally db rollback [--steps n] [--yes]",
				Description: `Reverts applied migrations of the local database, newest first.

Reverted tables lose their data. Migrations are applied again the next
time tally opens the database.`,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "steps",
						Usage:       "number of migrations to revert",
						Value:       1,
						Destination: &cmd.steps,
					},
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "revert without asking",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runRollback,
			},
		},
	})

	return app
}

func (cmd *DBCmd) runStatus(ctx context.Context, c *cli.Command) error {
	if cmd.app.DB == nil {
		return errors.New("no local database is open")
	}

	statuses, err := db.Status(ctx, cmd.app.DB.Conn())
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.asJSON {
		for _, st := range statuses {
			rec := migrationJSON{Version: st.Version, Name: st.Name, Applied: st.Applied()}
			if st.Applied() {
				rec.AppliedAt = st.AppliedAt.Format(time.RFC3339)
			}
			if err := iojson.WriteLine(out, rec); err != nil {
				return err
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
	for _, st := range statuses {
		applied := "pending"
		if st.Applied() {
			applied = st.AppliedAt.Format(time.DateTime)
		}
		_, _ = fmt.Fprintf(w, "%04d\t%s\t%s\n", st.Version, st.Name, applied)
	}
	return w.Flush()
}

func (cmd *DBCmd) runRollback(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.app.DB == nil {
		return errors.New("no local database is open")
	}

	ok, err := promptConfirmer{assumeYes: cmd.yes}.Confirm(ctx, "Revert migrations? Data in reverted tables is lost.")
	if err != nil {
		return err
	}
	if !ok {
		p.Infof("Rollback cancelled")
		return nil
	}

	if err := db.MigrateDown(ctx, cmd.app.DB.Conn(), cmd.steps); err != nil {
		return err
	}

	p.Successf("Reverted %d migration(s)", cmd.steps)
	return nil
}
