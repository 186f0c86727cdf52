package commands

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *console.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *console.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tui",
		Usage:     "Open the interactive console",
		UsageText: "tally tui",
		Description: `Opens one tab per entity the current role may view.

This is the default when tally is run without a command.`,
		Action: cmd.Run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(_ context.Context, _ *cli.Command) error {
	var warnings []string
	for _, w := range cmd.app.Config.Warnings() {
		warnings = append(warnings, fmt.Sprintf("%s: %s", w.Category, w.Message))
	}

	identity := cmd.flags.Identity()
	log.Info().Str("user", identity.User).Str("role", identity.Role).Msg("starting tui")

	m := tui.New(tui.Deps{App: cmd.app}, tui.Opts{
		Identity:   identity,
		Warnings:   warnings,
		ConfigPath: cmd.flags.ConfigPath,
	})
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
