package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/config"
)

const (
	rootUsage       = "Back-office console for customers, products, prices and invoices"
	rootDescription = `Tally edits back-office records in editable grids.

Each entity opens as a tab. Rows are edited in place, or in a dialog for
entities configured that way. What a user may add, edit or delete follows
the role given with --role.

Run 'tally' with no arguments to open the interactive console.
Run 'tally ls <entity>' to print records without the console.`
)

// NewRoot returns the tally root command with the global flags bound to
// flags. Subcommands are added by RegisterAll.
func NewRoot(flags *Flags) *cli.Command {
	return &cli.Command{
		Name:        "tally",
		Usage:       rootUsage,
		UsageText:   "tally [global options] command [command options]",
		Description: rootDescription,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TALLY_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/tally.log)",
				Sources:     cli.EnvVars("TALLY_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TALLY_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TALLY_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "user",
				Usage:       "user name recorded with changes",
				Sources:     cli.EnvVars("TALLY_USER"),
				Value:       DefaultUser(),
				Destination: &flags.User,
			},
			&cli.StringFlag{
				Name:        "role",
				Usage:       "role that decides what may be viewed and changed",
				Sources:     cli.EnvVars("TALLY_ROLE"),
				Value:       config.DefaultRole,
				Destination: &flags.Role,
			},
		},
	}
}

// RegisterAll adds every subcommand to root. The returned TuiCmd is the
// default action when no subcommand is given.
func RegisterAll(root *cli.Command, flags *Flags, app *console.App) (*cli.Command, *TuiCmd) {
	tuiCmd := NewTuiCmd(flags, app)

	root = tuiCmd.Register(root)
	root = NewLsCmd(flags, app).Register(root)
	root = NewAddCmd(flags, app).Register(root)
	root = NewEditCmd(flags, app).Register(root)
	root = NewRmCmd(flags, app).Register(root)
	root = NewImportCmd(flags, app).Register(root)
	root = NewEntitiesCmd(flags, app).Register(root)
	root = NewNotificationsCmd(flags, app).Register(root)
	root = NewDBCmd(flags, app).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)
	root = NewInitCmd(flags).Register(root)

	return root, tuiCmd
}
