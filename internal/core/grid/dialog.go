package grid

import "context"

// Dialog switches a grid to dialog editing. Editor is opaque to the
// controller; the rendering layer asserts it to its own editor contract.
type Dialog struct {
	Title  string
	Editor any
}

// DialogSelection is the row currently open in the dialog. Row is nil
// whenever Open is false.
type DialogSelection struct {
	Open bool
	Row  *Row
}

func (c *Controller) DialogConfig() *Dialog {
	return c.cfg.Dialog
}

// Dialog returns a copy of the current selection.
func (c *Controller) Dialog() DialogSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dialog.Open {
		return DialogSelection{}
	}
	row := c.dialog.Row.Clone()
	return DialogSelection{Open: true, Row: &row}
}

// OpenDialog selects the row with id for editing in the dialog. Any role
// may open a row; CanSubmit tells whether it may be saved.
func (c *Controller) OpenDialog(id ID) error {
	if c.cfg.Dialog == nil {
		return ErrDialogNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.store.Get(id)
	if !ok {
		return ErrRowNotFound
	}
	row = row.Clone()
	c.dialog = DialogSelection{Open: true, Row: &row}
	return nil
}

// CloseDialog clears the selection without saving.
func (c *Controller) CloseDialog() {
	c.mu.Lock()
	c.dialog = DialogSelection{}
	c.mu.Unlock()
}

// CanSubmit reports whether the grid's capabilities allow saving row from
// the dialog: new rows need Addable, existing rows need Editable.
func (c *Controller) CanSubmit(row Row) bool {
	return c.submitErr(row) == nil
}

func (c *Controller) submitErr(row Row) error {
	switch {
	case row.IsNew && !c.cfg.Capabilities.Addable:
		return ErrNotAddable
	case !row.IsNew && !c.cfg.Capabilities.Editable:
		return ErrNotEditable
	}
	return nil
}

// SubmitDialog commits values for the open row through the pipeline. On
// failure the dialog stays open so the editor can show the error.
func (c *Controller) SubmitDialog(ctx context.Context, values Values) (Row, error) {
	c.mu.Lock()
	if !c.dialog.Open {
		c.mu.Unlock()
		return Row{}, ErrNoDialog
	}
	old := c.dialog.Row.Clone()
	if err := c.submitErr(old); err != nil {
		c.mu.Unlock()
		return old, err
	}
	c.inflight++
	c.mu.Unlock()

	res, err := c.pipeline.Commit(ctx, old.With(values), old)

	c.mu.Lock()
	c.inflight--
	if err != nil {
		c.mu.Unlock()
		c.reportCommitError(old.ID, err)
		return old, err
	}

	switch {
	case res.Outcome == OutcomeCreated:
		c.appendOrLog(res.Row)
	case res.Rekeyed:
		c.store.RemoveByID(old.ID)
		c.appendOrLog(res.Row)
	case res.Outcome == OutcomeUpdated:
		c.replaceOrLog(old.ID, res.Row)
	}
	c.dialog = DialogSelection{}
	c.mu.Unlock()

	if res.Outcome == OutcomeCreated || res.Rekeyed {
		c.Invalidate()
	}
	return res.Row, nil
}
