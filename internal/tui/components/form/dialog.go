package form

import (
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tally/internal/core/styles"
)

// Dialog is a form container that manages focus cycling, submission, and
// cancellation across a set of form fields.
type Dialog struct {
	fields       []Field
	names        []string // parallel slice: value name for each field
	focusedField int
	submitted    bool
	cancelled    bool
	status       string
	Title        string
}

// NewDialog creates a form dialog with the given fields and value names.
// The first field is focused automatically.
func NewDialog(title string, fields []Field, names []string) *Dialog {
	d := &Dialog{
		fields: fields,
		names:  names,
		Title:  title,
	}
	if len(fields) > 0 {
		fields[0].Focus()
	}
	return d
}

// Update handles key input for the dialog, managing focus cycling and
// submit/cancel. Enter on the last field and ctrl+s anywhere submit.
func (d *Dialog) Update(msg tea.Msg) (*Dialog, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return d.updateFocusedField(msg)
	}

	switch keyMsg.String() {
	case "tab", "enter":
		return d.advanceFocus()
	case "shift+tab":
		return d.retreatFocus()
	case "ctrl+s":
		d.submitted = true
		return d, nil
	case "esc":
		d.cancelled = true
		return d, nil
	}

	return d.updateFocusedField(msg)
}

// View renders the title, all fields, the status line and help text.
func (d *Dialog) View() string {
	parts := []string{styles.FormTitleStyle.Render(d.Title), ""}
	for i, field := range d.fields {
		if i > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, field.View())
	}

	if d.status != "" {
		parts = append(parts, "", styles.FormErrorStyle.Render(d.status))
	}

	help := styles.FormHelpStyle.Render("tab: next  shift+tab: prev  ctrl+s: save  esc: cancel")
	parts = append(parts, "", help)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// FormValues returns the raw value of every field by name.
func (d *Dialog) FormValues() map[string]string {
	result := make(map[string]string, len(d.fields))
	for i, field := range d.fields {
		result[d.names[i]] = field.Value()
	}
	return result
}

// SetErrors shows errs under the named fields, clears the rest and moves
// focus to the first field with an error.
func (d *Dialog) SetErrors(errs map[string]string) tea.Cmd {
	first := -1
	for i, field := range d.fields {
		msg := errs[d.names[i]]
		field.SetError(msg)
		if msg != "" && first < 0 {
			first = i
		}
	}
	if first < 0 || first == d.focusedField {
		return nil
	}
	d.fields[d.focusedField].Blur()
	d.focusedField = first
	return d.fields[first].Focus()
}

// SetStatus shows a dialog-level message, such as a failed save.
func (d *Dialog) SetStatus(msg string) { d.status = msg }

// Resume clears the submitted flag so the user can keep editing after a
// rejected submit.
func (d *Dialog) Resume() { d.submitted = false }

func (d *Dialog) Submitted() bool { return d.submitted }

func (d *Dialog) Cancelled() bool { return d.cancelled }

func (d *Dialog) advanceFocus() (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 {
		return d, nil
	}

	next := d.focusedField + 1
	if next >= len(d.fields) {
		d.submitted = true
		return d, nil
	}

	d.fields[d.focusedField].Blur()
	d.focusedField = next
	return d, d.fields[d.focusedField].Focus()
}

func (d *Dialog) retreatFocus() (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 || d.focusedField == 0 {
		return d, nil
	}

	d.fields[d.focusedField].Blur()
	d.focusedField--
	return d, d.fields[d.focusedField].Focus()
}

func (d *Dialog) updateFocusedField(msg tea.Msg) (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 {
		return d, nil
	}

	var cmd tea.Cmd
	d.fields[d.focusedField], cmd = d.fields[d.focusedField].Update(msg)
	return d, cmd
}
