package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/pkg/iojson"
)

type ImportCmd struct {
	flags *Flags
	app   *console.App
	fr    *iojson.FileReader[ImportInput]
	yes   bool
}

func NewImportCmd(flags *Flags, app *console.App) *ImportCmd {
	return &ImportCmd{
		flags: flags,
		app:   app,
		fr: &iojson.FileReader[ImportInput]{
			Usage: `path to a JSON file of the form {"records": [{"field": value}, ...]} (reads stdin if omitted)`,
		},
	}
}

func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "import",
		Usage: "Create multiple records from JSON input",
		UsageText: `tally import <entity> [options]

Read from stdin:
  echo '{"records":[{"name":"Acme","city":"Lyon"}]}' | tally import customers --yes

Read from file:
  tally import products -f products.json`,
		Description: `Creates records from a JSON specification, one commit per record.

Each record goes through the same validation as the console. Processing
stops after 3 failures; records not attempted are marked as skipped.

Input JSON schema:
  {
    "records": [
      { "<field>": <value>, ... }
    ]
  }

Values may be JSON strings, numbers or booleans and are parsed by field type.
Duplicate prompts need a terminal; pass --yes when piping input.

Output is JSON with the result of each record.`,
		Flags: []cli.Flag{
			cmd.fr.Flag(),
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

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return importFailure(c, "usage: tally import <entity>")
	}

	kind := c.Args().First()
	schema, ok := entity.Lookup(kind)
	if !ok {
		return importFailure(c, fmt.Sprintf("unknown entity %q", kind))
	}

	input, err := cmd.fr.Read()
	if err != nil {
		log.Error().Err(err).Msg("failed to read input")
		return importFailure(c, fmt.Sprintf("read input: %s", err))
	}

	if err := input.Validate(schema); err != nil {
		log.Error().Err(err).Msg("input validation failed")
		return importFailure(c, fmt.Sprintf("invalid input: %s", err))
	}

	output := ImportOutput{
		Entity:  kind,
		Results: make([]ImportResult, 0, len(input.Records)),
	}

	confirm := promptConfirmer{assumeYes: cmd.yes}
	failures := 0
	for i, rec := range input.Records {
		if failures >= maxFailures {
			log.Warn().Int("index", i).Msg("skipping records due to failure threshold")
			for j := i; j < len(input.Records); j++ {
				output.Results = append(output.Results, ImportResult{Index: j, Status: StatusSkipped})
			}
			break
		}

		result := cmd.createRecord(ctx, schema, i, rec, confirm)
		output.Results = append(output.Results, result)

		if result.Status == StatusFailed {
			failures++
			log.Error().Int("index", i).Str("error", result.Error).Msg("record import failed")
		}
	}

	log.Info().
		Str("entity", kind).
		Int("total", len(input.Records)).
		Int("created", countByStatus(output.Results, StatusCreated)).
		Int("failed", countByStatus(output.Results, StatusFailed)).
		Int("skipped", countByStatus(output.Results, StatusSkipped)).
		Msg("import complete")

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, output)
}

// importFailure reports msg as a JSON error and exits non-zero.
func importFailure(c *cli.Command, msg string) error {
	if err := iojson.WriteError(c.Root().ErrWriter, msg, nil); err != nil {
		return err
	}
	return cli.Exit("", 1)
}

func (cmd *ImportCmd) createRecord(ctx context.Context, schema entity.Schema, index int, rec map[string]any, confirm grid.Confirmer) ImportResult {
	values, err := schema.ParseAssignments(assignments(rec))
	if err != nil {
		return ImportResult{Index: index, Status: StatusFailed, Error: err.Error()}
	}

	res, err := cmd.app.Create(ctx, string(schema.Kind), grid.Values(values), confirm)
	if err != nil {
		return ImportResult{Index: index, Status: StatusFailed, Error: err.Error()}
	}
	return ImportResult{Index: index, ID: string(res.Row.ID), Status: StatusCreated}
}

// assignments renders a JSON record as sorted field=value arguments.
func assignments(rec map[string]any) []string {
	fields := slices.Sorted(maps.Keys(rec))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f+"="+grid.FormatValue(rec[f]))
	}
	return out
}

const (
	StatusCreated = "created" // StatusCreated indicates the record was created.
	StatusFailed  = "failed"  // StatusFailed indicates the record was rejected.
	StatusSkipped = "skipped" // StatusSkipped indicates the record was not attempted due to failure threshold.
	maxFailures   = 3         // maxFailures is the number of failures before stopping the import.
)

// ImportInput is the JSON input schema for tally import.
type ImportInput struct {
	Records []map[string]any `json:"records"`
}

// Validate checks that every record names only fields of schema.
func (in ImportInput) Validate(schema entity.Schema) error {
	if len(in.Records) == 0 {
		return criterio.NewFieldErrors("records", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	for i, rec := range in.Records {
		field := fmt.Sprintf("records[%d]", i)
		if len(rec) == 0 {
			errs = errs.Append(field, fmt.Errorf("record is empty"))
			continue
		}
		for _, f := range slices.Sorted(maps.Keys(rec)) {
			c, ok := schema.Column(f)
			if !ok {
				errs = errs.Append(field+"."+f, fmt.Errorf("unknown field"))
				continue
			}
			if c.ReadOnly {
				errs = errs.Append(field+"."+f, fmt.Errorf("field is read-only"))
			}
		}
	}

	return errs.ToError()
}

// ImportResult is the output for a single record.
type ImportResult struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ImportOutput is the JSON output schema.
type ImportOutput struct {
	Entity  string         `json:"entity"`
	Results []ImportResult `json:"results"`
}

func countByStatus(results []ImportResult, status string) int {
	count := 0
	for _, r := range results {
		if r.Status == status {
			count++
		}
	}
	return count
}
