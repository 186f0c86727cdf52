package form

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

func TestTextField(t *testing.T) {
	t.Run("creation with defaults", func(t *testing.T) {
		f := NewTextField("Name", "enter name", "")
		assert.Equal(t, "Name", f.Label())
		assert.Empty(t, f.Value())
		assert.False(t, f.Focused())
	})

	t.Run("creation with value", func(t *testing.T) {
		f := NewTextField("Name", "enter name", "hello")
		assert.Equal(t, "hello", f.Value())
	})

	t.Run("focus and blur", func(t *testing.T) {
		f := NewTextField("Name", "", "")
		f.Focus()
		assert.True(t, f.Focused())

		f.Blur()
		assert.False(t, f.Focused())
	})

	t.Run("update ignored when not focused", func(t *testing.T) {
		f := NewTextField("Name", "", "")
		field, cmd := f.Update(tea.KeyPressMsg(tea.Key{Code: 'a', Text: "a"}))
		assert.Nil(t, cmd)
		assert.Empty(t, field.Value())
	})

	t.Run("typing when focused", func(t *testing.T) {
		f := NewTextField("Name", "", "")
		f.Focus()
		f.Update(tea.KeyPressMsg(tea.Key{Code: 'h', Text: "h"}))
		f.Update(tea.KeyPressMsg(tea.Key{Code: 'i', Text: "i"}))
		assert.Equal(t, "hi", f.Value())
	})

	t.Run("error line", func(t *testing.T) {
		f := NewTextField("Email", "", "")
		f.SetError("must be an email")
		assert.Contains(t, f.View(), "must be an email")
	})

	t.Run("view changes with focus", func(t *testing.T) {
		f := NewTextField("Name", "", "")
		unfocused := f.View()

		f.Focus()
		focused := f.View()

		assert.NotEqual(t, unfocused, focused)
	})
}

func TestChoiceField(t *testing.T) {
	t.Run("default selection", func(t *testing.T) {
		assert.Equal(t, "yes", NewChoiceField("Active", []string{"yes", "no"}, "").Value())
		assert.Equal(t, "no", NewChoiceField("Active", []string{"yes", "no"}, "no").Value())
		assert.Empty(t, NewChoiceField("Active", nil, "").Value())
	})

	t.Run("cycles only when focused", func(t *testing.T) {
		f := NewChoiceField("Active", []string{"yes", "no"}, "yes")
		f.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyRight}))
		assert.Equal(t, "yes", f.Value())

		f.Focus()
		f.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyRight}))
		assert.Equal(t, "no", f.Value())
		f.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyRight}))
		assert.Equal(t, "yes", f.Value())
		f.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyLeft}))
		assert.Equal(t, "no", f.Value())
	})
}
