package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/printer"
	"github.com/colonyops/tally/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags
	app   *console.App

	// flags
	jsonOutput bool
	olderThan  time.Duration
}

// NewNotificationsCmd creates a new notifications command
func NewNotificationsCmd(flags *Flags, app *console.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

// Register adds the notifications command to the application
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "notifications",
		Aliases: []string{"notes"},
		Usage:   "Show or clear the notification history",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List past notifications, newest first",
				UsageText: "tally notifications list [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "clear",
				Usage:     "Delete the notification history",
				UsageText: "tally notifications clear [--older-than 24h]",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:        "older-than",
						Usage:       "only delete notifications older than this",
						Destination: &cmd.olderThan,
					},
				},
				Action: cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *NotificationsCmd) runList(ctx context.Context, c *cli.Command) error {
	history, err := cmd.app.Notify.History(ctx)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, n := range history {
			if err := iojson.WriteLine(out, n); err != nil {
				return fmt.Errorf("encode notification: %w", err)
			}
		}
		return nil
	}

	if len(history) == 0 {
		printer.Ctx(ctx).Infof("No notifications")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tLEVEL\tMESSAGE")
	for _, n := range history {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", n.CreatedAt.Local().Format(time.DateTime), n.Level, n.Message)
	}
	return w.Flush()
}

func (cmd *NotificationsCmd) runClear(ctx context.Context, _ *cli.Command) error {
	if cmd.olderThan > 0 {
		n, err := cmd.app.Notify.Prune(ctx, cmd.olderThan)
		if err != nil {
			return fmt.Errorf("prune notifications: %w", err)
		}
		printer.Ctx(ctx).Successf("Removed %d notification(s) older than %s", n, cmd.olderThan)
		return nil
	}

	if err := cmd.app.Notify.Clear(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	printer.Ctx(ctx).Successf("Cleared notification history")
	return nil
}
