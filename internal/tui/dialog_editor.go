package tui

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/internal/tui/components/form"
)

// DialogEditor edits the row a dialog-mode grid has open, one form field
// per editable column. Rows the role may not save open read-only.
type DialogEditor struct {
	tab        int
	ctrl       *grid.Controller
	columns    []entity.Column
	row        grid.Row
	form       *form.Dialog
	readOnly   bool
	submitting bool
	closed     bool
}

// NewDialogEditor builds an editor for the controller's open dialog row.
func NewDialogEditor(tab int, schema entity.Schema, ctrl *grid.Controller, row grid.Row) *DialogEditor {
	columns := schema.Editable()
	fields := make([]form.Field, 0, len(columns))
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		label := c.Title
		if c.Required {
			label += " *"
		}
		value := c.Format(row.Get(c.Field))
		if c.Type == entity.TypeBool {
			fields = append(fields, form.NewChoiceField(label, []string{"no", "yes"}, value))
		} else {
			fields = append(fields, form.NewTextField(label, placeholder(c), value))
		}
		names = append(names, c.Field)
	}

	readOnly := !ctrl.CanSubmit(row)
	title := styles.IconEdit + " " + ctrl.DialogConfig().Title + " " + string(row.ID)
	if row.IsNew {
		title = styles.IconNew + " New " + ctrl.DialogConfig().Title
	}
	if readOnly {
		title += " (read only)"
	}

	return &DialogEditor{
		tab:      tab,
		ctrl:     ctrl,
		columns:  columns,
		row:      row,
		form:     form.NewDialog(title, fields, names),
		readOnly: readOnly,
	}
}

func placeholder(c entity.Column) string {
	switch c.Type {
	case entity.TypeDate:
		return entity.DateLayout
	case entity.TypeMoney:
		return "0.00"
	case entity.TypeInt:
		return "0"
	case entity.TypeEmail:
		return "name@example.com"
	default:
		return ""
	}
}

// Closed reports whether the dialog was cancelled or saved.
func (e *DialogEditor) Closed() bool { return e.closed }

// Update forwards input to the form and starts a commit when it is
// submitted.
func (e *DialogEditor) Update(msg tea.Msg, run runFunc) tea.Cmd {
	if e.submitting {
		return nil
	}

	_, cmd := e.form.Update(msg)

	switch {
	case e.form.Cancelled():
		e.ctrl.CloseDialog()
		e.closed = true
		return nil
	case e.form.Submitted():
		return tea.Batch(cmd, e.submit(run))
	}
	return cmd
}

func (e *DialogEditor) submit(run runFunc) tea.Cmd {
	if e.readOnly {
		e.form.Resume()
		e.form.SetStatus("Read only: your role cannot change " + e.ctrl.Name() + ".")
		return nil
	}

	raw := e.form.FormValues()
	values := make(grid.Values, len(e.columns))
	errs := make(map[string]string)
	for _, c := range e.columns {
		v, err := c.Parse(raw[c.Field])
		if err != nil {
			errs[c.Field] = err.Error()
			continue
		}
		values[c.Field] = v
	}

	e.form.Resume()
	if len(errs) > 0 {
		return e.form.SetErrors(errs)
	}
	e.form.SetErrors(nil)
	e.form.SetStatus("")
	e.submitting = true

	tab := e.tab
	return run(func(ctx context.Context) tea.Msg {
		row, err := e.ctrl.SubmitDialog(ctx, values)
		return dialogSubmittedMsg{tab: tab, row: row, err: err}
	})
}

// Done settles a finished commit. The dialog closes on success and shows
// the failure otherwise.
func (e *DialogEditor) Done(msg dialogSubmittedMsg) tea.Cmd {
	e.submitting = false
	if msg.err == nil {
		e.closed = true
		return nil
	}

	var verr *grid.ValidationError
	switch {
	case errors.As(msg.err, &verr) && len(verr.Fields()) > 0:
		errs := make(map[string]string, len(verr.Fields()))
		for _, fe := range verr.Fields() {
			errs[fe.Field] = fe.Err.Error()
		}
		return e.form.SetErrors(errs)
	case errors.Is(msg.err, grid.ErrCommitAborted):
		e.form.SetStatus("Not saved.")
	default:
		e.form.SetStatus(msg.err.Error())
	}
	return nil
}

func (e *DialogEditor) View() string {
	return styles.ModalStyle.Render(e.form.View())
}
