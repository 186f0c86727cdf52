package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/commands"
	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/notify"
	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/internal/data/db"
	"github.com/colonyops/tally/internal/data/stores"
	"github.com/colonyops/tally/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// eventBufferSize bounds the event bus queue.
const eventBufferSize = 256

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		tallyApp  = &console.App{}
		database  *db.DB
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := commands.NewRoot(flags)
	app.Version = build()
	app.Before = func(ctx context.Context, c *cli.Command) (context.Context, error) {
		// Always log to a file; use explicit path or default to <datadir>/tally.log
		logFile := flags.LogFile
		if logFile == "" {
			logFile = filepath.Join(flags.DataDir, "tally.log")
		}

		logger, closer, err := logutils.New(flags.LogLevel, logFile, os.Stderr)
		if err != nil {
			return ctx, fmt.Errorf("setup logger: %w", err)
		}
		log.Logger = logger
		logCloser = closer

		cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
		if err != nil {
			return ctx, fmt.Errorf("load config: %w", err)
		}
		flags.Config = cfg

		// Apply configured theme (validation ensures name is valid)
		palette, _ := styles.GetPalette(cfg.TUI.Theme)
		styles.SetTheme(palette)

		database, err = console.OpenDatabase(cfg)
		if err != nil {
			return ctx, fmt.Errorf("open database: %w", err)
		}

		store, err := console.OpenStore(ctx, cfg, database)
		if err != nil {
			return ctx, fmt.Errorf("open store: %w", err)
		}

		bus := eventbus.New(eventBufferSize)
		if flags.LogLevel == "debug" {
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
		}
		busCtx, cancel := context.WithCancel(context.Background())
		busCancel = cancel
		go bus.Start(busCtx)

		// Populate the pre-allocated App struct (commands already hold a pointer to it)
		*tallyApp = *console.NewApp(cfg, store, bus, notify.NewBus(stores.NewNotifyStore(database)))
		if n, err := tallyApp.Notify.Prune(ctx, cfg.Notifications.Retention); err != nil {
			log.Warn().Err(err).Msg("failed to prune notification history")
		} else if n > 0 {
			log.Debug().Int64("removed", n).Msg("pruned notification history")
		}
		tallyApp.DB = database
		tallyApp.Prefs = stores.NewKVStore(database)
		if n, err := tallyApp.Prefs.Sweep(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to sweep expired preferences")
		} else if n > 0 {
			log.Debug().Int64("removed", n).Msg("swept expired preferences")
		}

		identity := flags.Identity()
		if _, ok := cfg.Roles[identity.Role]; !ok {
			log.Warn().Str("role", identity.Role).Msg("role is not configured; nothing will be visible")
		}

		return logging.NewOperation(access.WithIdentity(ctx, identity)), nil
	}
	app.After = func(ctx context.Context, c *cli.Command) error {
		if busCancel != nil {
			busCancel()
		}

		// Close database connection
		if database != nil {
			if err := database.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
				return err
			}
		}

		// Close log file
		if logCloser != nil {
			logCloser()
		}
		return nil
	}

	app, tuiCmd := commands.RegisterAll(app, flags, tallyApp)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'tally --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
