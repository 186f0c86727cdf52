package form

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/tally/internal/core/styles"
)

// ChoiceField picks one of a few fixed options, cycled with left and right.
type ChoiceField struct {
	options  []string
	selected int
	label    string
	errMsg   string
	focused  bool
}

// NewChoiceField creates a choice field. value pre-selects the matching
// option; anything else selects the first.
func NewChoiceField(label string, options []string, value string) *ChoiceField {
	f := &ChoiceField{options: options, label: label}
	for i, opt := range options {
		if opt == value {
			f.selected = i
		}
	}
	return f
}

func (f *ChoiceField) Update(msg tea.Msg) (Field, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !f.focused || !ok || len(f.options) == 0 {
		return f, nil
	}

	switch keyMsg.String() {
	case "left", "h":
		f.selected = (f.selected - 1 + len(f.options)) % len(f.options)
	case "right", "l", "space":
		f.selected = (f.selected + 1) % len(f.options)
	}
	return f, nil
}

func (f *ChoiceField) View() string {
	items := make([]string, len(f.options))
	for i, opt := range f.options {
		if i == f.selected {
			items[i] = styles.SelectFieldItemSelectedStyle.Render("(•) " + opt)
		} else {
			items[i] = styles.TextForegroundStyle.Render("( ) " + opt)
		}
	}
	return renderField(f.label, strings.Join(items, "  "), f.errMsg, f.focused)
}

func (f *ChoiceField) Focus() tea.Cmd {
	f.focused = true
	return nil
}

func (f *ChoiceField) Blur() { f.focused = false }

func (f *ChoiceField) SetError(msg string) { f.errMsg = msg }

func (f *ChoiceField) Focused() bool { return f.focused }
func (f *ChoiceField) Label() string { return f.label }

func (f *ChoiceField) Value() string {
	if len(f.options) == 0 {
		return ""
	}
	return f.options[f.selected]
}
