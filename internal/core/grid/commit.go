package grid

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
)

// Validator checks a single cell value.
type Validator = func(value any) error

// Rules are the caller-supplied commit policies of a grid.
type Rules struct {
	// Compare lists the fields that decide whether a row changed. When empty
	// every field present on either row is compared.
	Compare []string
	// Validators run per field, in field order, before any backend call.
	Validators map[string][]Validator
	// Duplicate returns a confirmation prompt when row looks like a
	// near-duplicate of an existing record, or "" when it does not.
	Duplicate func(ctx context.Context, row Row) (string, error)
	// Key derives the id of rows keyed by their own values. When set, a change
	// to a key field moves the row to its new id.
	Key func(values Values) (ID, bool)
}

// Changed reports whether newRow differs from oldRow on the compared fields.
func (r Rules) Changed(newRow, oldRow Row) bool {
	fields := r.Compare
	if len(fields) == 0 {
		fields = newRow.Values.Merge(oldRow.Values).Fields()
	}
	for _, f := range fields {
		if !ValueEqual(newRow.Values[f], oldRow.Values[f]) {
			return true
		}
	}
	return false
}

// Validate runs every field validator against row and collects the first
// failure of each field.
func (r Rules) Validate(row Row) error {
	fields := make([]string, 0, len(r.Validators))
	for f := range r.Validators {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var errs criterio.FieldErrorsBuilder
	for _, f := range fields {
		for _, fn := range r.Validators[f] {
			if err := fn(row.Values[f]); err != nil {
				errs = errs.Append(f, err)
				break
			}
		}
	}
	return errs.ToError()
}

// Outcome records what a commit did.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Result is the row a commit settled on. On any failure Row is the old row.
type Result struct {
	Row     Row
	Outcome Outcome
	// Rekeyed is set when the row's id changed on update.
	Rekeyed bool
}

// Pipeline validates a proposed row and dispatches it to the source. It
// holds no row state; the Controller reconciles its store with the Result.
type Pipeline struct {
	source  Source
	rules   Rules
	confirm Confirmer
	logger  zerolog.Logger
}

func NewPipeline(source Source, rules Rules, confirm Confirmer, logger zerolog.Logger) *Pipeline {
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	return &Pipeline{source: source, rules: rules, confirm: confirm, logger: logger}
}

// Commit takes a row from oldRow to newRow. The first step that stops the
// commit returns oldRow: no change, validation failure, declined duplicate
// prompt, backend failure.
func (p *Pipeline) Commit(ctx context.Context, newRow, oldRow Row) (Result, error) {
	proceed, err := p.Check(ctx, newRow, oldRow)
	if err != nil || !proceed {
		return Result{Row: oldRow, Outcome: OutcomeUnchanged}, err
	}
	return p.Dispatch(ctx, newRow, oldRow)
}

// Check runs the local gates of a commit. It returns false with a nil error
// when there is nothing to save.
func (p *Pipeline) Check(ctx context.Context, newRow, oldRow Row) (bool, error) {
	if !p.rules.Changed(newRow, oldRow) {
		p.logger.Debug().Str("row", string(oldRow.ID)).Msg("commit skipped, no change")
		return false, nil
	}

	if err := p.rules.Validate(newRow); err != nil {
		return false, &ValidationError{Row: oldRow.ID, Err: err}
	}

	if p.rules.Duplicate == nil {
		return true, nil
	}

	prompt, err := p.rules.Duplicate(ctx, newRow)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	if prompt == "" {
		return true, nil
	}

	ok, err := p.confirm.Confirm(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("duplicate confirmation: %w", err)
	}
	if !ok {
		return false, ErrCommitAborted
	}
	return true, nil
}

// Dispatch sends newRow to the source: a create for new rows, otherwise an
// update carrying only the fields that differ from oldRow.
func (p *Pipeline) Dispatch(ctx context.Context, newRow, oldRow Row) (Result, error) {
	if newRow.IsNew {
		return p.create(ctx, newRow, oldRow)
	}
	return p.update(ctx, newRow, oldRow)
}

func (p *Pipeline) create(ctx context.Context, newRow, oldRow Row) (Result, error) {
	values := newRow.Values.Clone()
	id, err := p.source.Create(ctx, values)
	if err != nil {
		return Result{Row: oldRow}, &DispatchError{Op: "create", Row: oldRow.ID, Err: err}
	}
	if id == "" {
		return Result{Row: oldRow}, &DispatchError{Op: "create", Row: oldRow.ID, Err: errors.New("backend returned an empty id")}
	}

	p.logger.Debug().Str("temp_id", string(oldRow.ID)).Str("id", string(id)).Msg("row created")
	return Result{
		Row:     Row{ID: id, Values: values},
		Outcome: OutcomeCreated,
	}, nil
}

func (p *Pipeline) update(ctx context.Context, newRow, oldRow Row) (Result, error) {
	changed := newRow.Values.Diff(oldRow.Values)
	if err := p.source.Update(ctx, oldRow.ID, changed); err != nil {
		return Result{Row: oldRow}, &DispatchError{Op: "update", Row: oldRow.ID, Err: err}
	}

	final := Row{ID: oldRow.ID, Values: oldRow.Values.Merge(changed)}
	res := Result{Row: final, Outcome: OutcomeUpdated}

	if p.rules.Key != nil {
		if key, ok := p.rules.Key(final.Values); ok && key != oldRow.ID {
			res.Row.ID = key
			res.Rekeyed = true
		}
	}

	p.logger.Debug().
		Str("id", string(res.Row.ID)).
		Strs("fields", changed.Fields()).
		Bool("rekeyed", res.Rekeyed).
		Msg("row updated")
	return res, nil
}
