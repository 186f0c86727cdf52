// Package grid is an editable data-grid controller. It turns a row
// collection and a Source of CRUD callbacks into add, edit, save, cancel and
// delete transitions with optimistic local updates. It knows nothing about
// rendering or transport.
package grid

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/access"
)

// Config describes one grid.
type Config struct {
	Name         string
	Capabilities Capabilities
	// Dialog, when set, replaces inline editing with a dialog editor.
	Dialog *Dialog
	Rules  Rules
}

// Action is a resolved row or toolbar action bound to its handler.
type Action struct {
	Kind ActionKind
	Run  func(ctx context.Context) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfirmer sets the prompt used for deletes and duplicate warnings.
// Without it every confirmation is granted.
func WithConfirmer(confirm Confirmer) Option {
	return func(c *Controller) { c.confirm = confirm }
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

func WithTrigger(t Trigger) Option {
	return func(c *Controller) { c.trigger = t }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller owns a grid's rows, edit states and dialog selection. All
// methods are safe for concurrent use; the lock is never held across Source
// calls, so the last mutation to land wins.
type Controller struct {
	cfg      Config
	source   Source
	confirm  Confirmer
	notify   Notifier
	trigger  Trigger
	logger   zerolog.Logger
	pipeline *Pipeline

	mu       sync.Mutex
	store    *Store
	registry *Registry
	drafts   map[ID]Values
	dialog   DialogSelection
	inflight int
	loaded   bool
}

func New(cfg Config, source Source, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		source:   source,
		confirm:  AlwaysConfirm,
		notify:   nopNotifier{},
		trigger:  nopTrigger{},
		logger:   zerolog.Nop(),
		store:    &Store{},
		registry: NewRegistry(),
		drafts:   make(map[ID]Values),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With().Str("grid", cfg.Name).Logger()
	c.pipeline = NewPipeline(source, cfg.Rules, c.confirm, c.logger)
	return c
}

func (c *Controller) Name() string { return c.cfg.Name }

func (c *Controller) Capabilities() Capabilities { return c.cfg.Capabilities }

// Loading reports whether any backend call is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Loaded reports whether a fetch has succeeded at least once.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Revision changes whenever the row set changes.
func (c *Controller) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Revision()
}

// Rows returns the rows for display. Rows in edit mode carry their pending
// values.
func (c *Controller) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := c.store.Rows()
	out := make([]Row, len(rows))
	for i, r := range rows {
		if draft, ok := c.drafts[r.ID]; ok && len(draft) > 0 {
			r = r.With(draft)
		}
		out[i] = r
	}
	return out
}

// Row returns the stored row with id, without pending edits.
func (c *Controller) Row(id ID) (Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(id)
}

func (c *Controller) State(id ID) EditState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Get(id)
}

// Draft returns a copy of the pending values of a row in edit mode.
func (c *Controller) Draft(id ID) Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drafts[id].Clone()
}

// Load fetches every row from the source and replaces the local set. Rows
// added locally and not yet created survive the reload.
func (c *Controller) Load(ctx context.Context) error {
	c.begin()
	rows, err := c.source.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	if err != nil {
		c.logger.Error().Err(err).Msg("fetch failed")
		c.notify.Errorf("%s: load failed: %v", c.cfg.Name, err)
		return fmt.Errorf("fetch %s: %w", c.cfg.Name, err)
	}

	for _, r := range c.store.Rows() {
		if r.IsNew {
			rows = append(rows, r)
		}
	}
	if err := c.store.ReplaceAll(rows); err != nil {
		c.logger.Error().Err(err).Msg("fetch returned an invalid row set")
		c.notify.Errorf("%s: load failed: %v", c.cfg.Name, err)
		return fmt.Errorf("load %s: %w", c.cfg.Name, err)
	}

	present := func(id ID) bool { return c.store.IndexOf(id) >= 0 }
	c.registry.Prune(present)
	for id := range c.drafts {
		if !present(id) {
			delete(c.drafts, id)
		}
	}
	c.loaded = true

	c.logger.Debug().Int("rows", len(rows)).Msg("grid loaded")
	return nil
}

// Invalidate asks the trigger to reload this grid.
func (c *Controller) Invalidate() {
	c.trigger.Invalidate(c.cfg.Name)
}

// StartAdd creates a blank local row under a temporary id and puts it in
// edit mode. In dialog mode the row opens in the dialog instead.
func (c *Controller) StartAdd() (ID, error) {
	if !c.cfg.Capabilities.Addable {
		return "", ErrNotAddable
	}

	row := Row{ID: NewTempID(), IsNew: true, Values: Values{}}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.Dialog != nil {
		c.dialog = DialogSelection{Open: true, Row: &row}
		return row.ID, nil
	}

	if err := c.store.Append(row); err != nil {
		return "", err
	}
	c.registry.Set(row.ID, EditState{Mode: ModeEdit})
	c.drafts[row.ID] = Values{}
	return row.ID, nil
}

// StartEdit puts a row in edit mode, focusing field when given. Calling it on
// a row already in edit mode only moves the focus.
func (c *Controller) StartEdit(id ID, field string) error {
	if c.cfg.Dialog != nil {
		return ErrDialogMode
	}
	if !c.cfg.Capabilities.Editable {
		return ErrNotEditable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.Get(id); !ok {
		return ErrRowNotFound
	}
	if _, ok := c.drafts[id]; !ok {
		c.drafts[id] = Values{}
	}
	c.registry.Set(id, EditState{Mode: ModeEdit, FocusField: field})
	return nil
}

// SetValue records a pending cell value on a row in edit mode.
func (c *Controller) SetValue(id ID, field string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registry.Get(id).Editing() {
		return ErrNotEditing
	}
	draft, ok := c.drafts[id]
	if !ok {
		draft = Values{}
		c.drafts[id] = draft
	}
	draft[field] = value
	return nil
}

// Cancel leaves edit mode and throws away pending values. A row that was
// never created is removed entirely.
func (c *Controller) Cancel(id ID) error {
	c.mu.Lock()

	row, ok := c.store.Get(id)
	if !ok {
		c.mu.Unlock()
		return ErrRowNotFound
	}
	delete(c.drafts, id)

	if !row.IsNew {
		c.registry.Set(id, EditState{Mode: ModeView, DiscardOnExit: true})
		c.mu.Unlock()
		return nil
	}

	c.store.RemoveByID(id)
	c.registry.Delete(id)
	c.mu.Unlock()

	c.Invalidate()
	return nil
}

// Save commits the pending values of a row. The row shows the new values
// while the backend call is in flight. On a backend failure the row rolls
// back to its previous values and returns to edit mode with its pending
// values intact, so the user can retry or cancel.
func (c *Controller) Save(ctx context.Context, id ID) (Row, error) {
	c.mu.Lock()
	old, ok := c.store.Get(id)
	if !ok {
		c.mu.Unlock()
		return Row{}, ErrRowNotFound
	}
	state := c.registry.Get(id)
	if !state.Editing() {
		c.mu.Unlock()
		return old, ErrNotEditing
	}
	proposed := old.With(c.drafts[id])
	c.registry.Set(id, EditState{Mode: ModeView})
	c.inflight++
	c.mu.Unlock()

	proceed, err := c.pipeline.Check(ctx, proposed, old)
	if err != nil || !proceed {
		c.mu.Lock()
		c.inflight--
		c.settleRejected(old, state, err)
		c.mu.Unlock()
		if err != nil {
			c.reportCommitError(id, err)
		}
		return old, err
	}

	c.mu.Lock()
	c.replaceOrLog(id, proposed)
	c.mu.Unlock()

	res, err := c.pipeline.Dispatch(ctx, proposed, old)

	c.mu.Lock()
	c.inflight--
	if err != nil {
		c.replaceOrLog(id, old)
		c.registry.Set(id, EditState{Mode: ModeEdit, FocusField: state.FocusField})
		c.mu.Unlock()
		c.reportCommitError(id, err)
		return old, err
	}

	delete(c.drafts, id)
	c.registry.Delete(id)
	switch {
	case res.Rekeyed:
		c.store.RemoveByID(id)
		c.appendOrLog(res.Row)
	case res.Outcome == OutcomeCreated:
		// A temp row that cannot take its server id is dropped; the reload
		// below brings the created record back.
		if err := c.store.ReplaceByID(id, res.Row); err != nil {
			c.store.RemoveByID(id)
			c.logger.Debug().Err(err).Str("row", string(id)).Msg("created row not reconciled")
		}
	default:
		c.replaceOrLog(id, res.Row)
	}
	if c.store.IndexOf(res.Row.ID) >= 0 {
		c.registry.Set(res.Row.ID, EditState{Mode: ModeView})
	}
	c.mu.Unlock()

	if res.Outcome == OutcomeCreated || res.Rekeyed {
		c.Invalidate()
	}
	return res.Row, nil
}

// settleRejected restores edit state after a commit that never reached the
// backend. Existing rows revert and leave edit mode when validation fails or
// nothing changed; new rows and declined prompts keep their pending values.
// Callers hold c.mu.
func (c *Controller) settleRejected(old Row, prev EditState, err error) {
	var verr *ValidationError
	revert := !old.IsNew && (err == nil || errors.As(err, &verr))
	if revert {
		delete(c.drafts, old.ID)
		c.registry.Set(old.ID, EditState{Mode: ModeView, DiscardOnExit: err != nil})
		return
	}
	c.registry.Set(old.ID, EditState{Mode: ModeEdit, FocusField: prev.FocusField})
}

// Delete removes a row after the user confirms. Declining is not an error;
// it returns false. Rows never created are dropped locally without a prompt.
func (c *Controller) Delete(ctx context.Context, id ID, who access.Identity) (bool, error) {
	if !c.cfg.Capabilities.Deletable {
		return false, ErrNotDeletable
	}

	row, ok := c.Row(id)
	if !ok {
		return false, ErrRowNotFound
	}
	if row.IsNew {
		return true, c.Cancel(id)
	}

	confirmed, err := c.confirm.Confirm(ctx, fmt.Sprintf("Delete %s %s?", c.cfg.Name, id))
	if err != nil {
		return false, fmt.Errorf("delete confirmation: %w", err)
	}
	if !confirmed {
		c.logger.Debug().Str("row", string(id)).Msg("delete declined")
		return false, nil
	}

	c.begin()
	err = c.source.Delete(ctx, id, who)
	c.mu.Lock()
	c.inflight--
	if err != nil {
		c.mu.Unlock()
		c.logger.Error().Err(err).Str("row", string(id)).Str("user", who.User).Msg("delete failed")
		c.notify.Errorf("%s: delete %s failed: %v", c.cfg.Name, id, err)
		return false, &DispatchError{Op: "delete", Row: id, Err: err}
	}
	c.store.RemoveByID(id)
	c.registry.Delete(id)
	delete(c.drafts, id)
	c.mu.Unlock()

	c.logger.Info().Str("row", string(id)).Str("user", who.User).Str("role", who.Role).Msg("row deleted")
	c.Invalidate()
	return true, nil
}

// Actions returns the row actions available for id, bound to handlers.
// Delete handlers take the identity from the context.
func (c *Controller) Actions(id ID) []Action {
	kinds := ResolveActions(c.State(id), c.cfg.Capabilities, c.cfg.Dialog != nil)

	actions := make([]Action, 0, len(kinds))
	for _, kind := range kinds {
		var run func(ctx context.Context) error
		switch kind {
		case ActionEdit:
			run = func(context.Context) error { return c.StartEdit(id, "") }
		case ActionSave:
			run = func(ctx context.Context) error { _, err := c.Save(ctx, id); return err }
		case ActionCancel:
			run = func(context.Context) error { return c.Cancel(id) }
		case ActionDelete:
			run = func(ctx context.Context) error { _, err := c.Delete(ctx, id, access.FromContext(ctx)); return err }
		case ActionOpenDialog:
			run = func(context.Context) error { return c.OpenDialog(id) }
		}
		actions = append(actions, Action{Kind: kind, Run: run})
	}
	return actions
}

// ToolbarActions returns the grid-level actions bound to handlers.
func (c *Controller) ToolbarActions() []Action {
	kinds := ToolbarActions(c.cfg.Capabilities)
	actions := make([]Action, 0, len(kinds))
	for _, kind := range kinds {
		actions = append(actions, Action{Kind: kind, Run: func(context.Context) error {
			_, err := c.StartAdd()
			return err
		}})
	}
	return actions
}

func (c *Controller) begin() {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()
}

func (c *Controller) reportCommitError(id ID, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.logger.Debug().Err(err).Str("row", string(id)).Msg("commit rejected by validation")
	case errors.Is(err, ErrCommitAborted):
		c.logger.Debug().Str("row", string(id)).Msg("commit aborted by user")
	default:
		c.logger.Error().Err(err).Str("row", string(id)).Msg("commit failed")
		c.notify.Errorf("%s: save failed: %v", c.cfg.Name, err)
	}
}

// replaceOrLog and appendOrLog tolerate rows that a concurrent reload
// already dropped. Callers hold c.mu.
func (c *Controller) replaceOrLog(id ID, row Row) {
	if err := c.store.ReplaceByID(id, row); err != nil {
		c.logger.Debug().Err(err).Str("row", string(id)).Msg("row changed underneath commit")
	}
}

func (c *Controller) appendOrLog(row Row) {
	if err := c.store.Append(row); err != nil {
		c.logger.Debug().Err(err).Str("row", string(row.ID)).Msg("row changed underneath commit")
	}
}
