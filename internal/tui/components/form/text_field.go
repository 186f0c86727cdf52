package form

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tally/internal/core/styles"
)

// TextField is a single-line text input form field.
type TextField struct {
	input   textinput.Model
	label   string
	errMsg  string
	focused bool
}

// NewTextField creates a single-line input labeled label, prefilled with
// value.
func NewTextField(label, placeholder, value string) *TextField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.SetWidth(40)
	ti.SetValue(value)

	inputStyles := textinput.DefaultStyles(true)
	inputStyles.Cursor.Color = styles.ColorPrimary
	inputStyles.Focused.Placeholder = lipgloss.NewStyle().Foreground(styles.ColorMuted)
	inputStyles.Blurred.Placeholder = lipgloss.NewStyle().Foreground(styles.ColorMuted)
	ti.SetStyles(inputStyles)

	return &TextField{
		input: ti,
		label: label,
	}
}

func (f *TextField) Update(msg tea.Msg) (Field, tea.Cmd) {
	if !f.focused {
		return f, nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f *TextField) View() string {
	return renderField(f.label, f.input.View(), f.errMsg, f.focused)
}

func (f *TextField) Focus() tea.Cmd {
	f.focused = true
	return f.input.Focus()
}

func (f *TextField) Blur() {
	f.focused = false
	f.input.Blur()
}

func (f *TextField) SetError(msg string) { f.errMsg = msg }

func (f *TextField) Focused() bool { return f.focused }
func (f *TextField) Value() string { return f.input.Value() }
func (f *TextField) Label() string { return f.label }

// renderField frames a field body with its label and error line.
func renderField(label, body, errMsg string, focused bool) string {
	titleStyle := styles.TextMutedStyle
	borderStyle := styles.FormFieldStyle
	if focused {
		titleStyle = styles.FormTitleStyle
		borderStyle = styles.FormFieldFocusedStyle
	}

	parts := []string{titleStyle.Render(label), body}
	if errMsg != "" {
		parts = append(parts, styles.FormErrorStyle.Render(errMsg))
	}
	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
