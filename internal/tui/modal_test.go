package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tally/pkg/tuitest"
)

func TestModal_NewDefaults(t *testing.T) {
	m := NewModal("Confirm", "Delete customers 3?")
	assert.True(t, m.Visible())
	assert.True(t, m.ConfirmSelected())
	assert.False(t, m.Alert())
	assert.Equal(t, "Delete customers 3?", m.Message())
}

func TestModal_Overlay_NotVisible(t *testing.T) {
	m := Modal{}
	bg := "background content"
	assert.Equal(t, bg, m.Overlay(bg, 80, 24))
}

func TestModal_ToggleSelection(t *testing.T) {
	m := NewModal("", "")
	m.ToggleSelection()
	assert.False(t, m.ConfirmSelected())

	m.ToggleSelection()
	assert.True(t, m.ConfirmSelected())
}

func TestModal_Overlay(t *testing.T) {
	t.Run("confirm shows buttons", func(t *testing.T) {
		out := tuitest.StripANSI(NewModal("Confirm", "Save anyway?").Overlay("bg", 80, 24))
		assert.Contains(t, out, "Save anyway?")
		assert.Contains(t, out, "Confirm")
		assert.Contains(t, out, "Cancel")
	})

	t.Run("alert lists lines without buttons", func(t *testing.T) {
		m := NewAlert("Cannot save", "name: is required", "email: must be an email")
		assert.True(t, m.Alert())

		out := tuitest.StripANSI(m.Overlay("bg", 80, 24))
		assert.Contains(t, out, "Cannot save")
		assert.Contains(t, out, "name: is required")
		assert.Contains(t, out, "email: must be an email")
		assert.NotContains(t, out, "Cancel")
	})
}
