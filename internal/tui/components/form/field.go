// Package form provides the field widgets and the dialog container used by
// dialog-mode grids.
package form

import tea "charm.land/bubbletea/v2"

// Field is the interface implemented by all form field types.
type Field interface {
	Update(msg tea.Msg) (Field, tea.Cmd)
	View() string
	Focus() tea.Cmd
	Blur()
	Focused() bool
	Value() string
	Label() string
	// SetError shows msg under the field. An empty msg clears it.
	SetError(msg string)
}
