package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/access"
)

// EntityCompleter returns a ShellCompleteFunc that suggests the entities the
// current role can view as the first positional argument.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func EntityCompleter(app *console.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
			if args.Len() > 1 {
				return
			}
		}

		w := cmd.Root().Writer
		for _, spec := range app.Grids(access.FromContext(ctx).Role) {
			_, _ = fmt.Fprintln(w, spec.Schema.Kind)
		}
	}
}
