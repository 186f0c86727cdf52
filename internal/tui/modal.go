package tui

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tally/internal/core/styles"
)

// Modal is a centered dialog. A confirm modal offers Confirm and Cancel
// buttons; an alert modal only shows its message until dismissed.
type Modal struct {
	title           string
	message         string
	visible         bool
	alert           bool
	confirmSelected bool
}

// NewModal creates a confirmation modal with the confirm button selected.
func NewModal(title, message string) Modal {
	return Modal{
		title:           title,
		message:         message,
		visible:         true,
		confirmSelected: true,
	}
}

// NewAlert creates an alert modal, used for errors the user must read.
func NewAlert(title string, lines ...string) Modal {
	return Modal{
		title:   title,
		message: strings.Join(lines, "\n"),
		visible: true,
		alert:   true,
	}
}

// ToggleSelection switches the selected button.
func (m *Modal) ToggleSelection() {
	m.confirmSelected = !m.confirmSelected
}

// ConfirmSelected returns true if the confirm button is selected.
func (m Modal) ConfirmSelected() bool {
	return m.confirmSelected
}

func (m Modal) Visible() bool { return m.visible }

func (m Modal) Alert() bool { return m.alert }

func (m Modal) Message() string { return m.message }

// Overlay renders the modal centered over the given background.
func (m Modal) Overlay(background string, width, height int) string {
	if !m.visible {
		return background
	}

	parts := []string{
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.message,
	}

	frame := styles.ModalStyle
	if m.alert {
		frame = styles.ModalErrorStyle
		parts = append(parts, styles.ModalHelpStyle.Render("enter/esc close"))
	} else {
		var confirmBtn, cancelBtn string
		if m.confirmSelected {
			confirmBtn = styles.ModalButtonSelectedStyle.Render("Confirm")
			cancelBtn = styles.ModalButtonStyle.Render("Cancel")
		} else {
			confirmBtn = styles.ModalButtonStyle.Render("Confirm")
			cancelBtn = styles.ModalButtonSelectedStyle.Render("Cancel")
		}
		buttons := lipgloss.JoinHorizontal(lipgloss.Center, confirmBtn, "  ", cancelBtn)
		parts = append(parts,
			lipgloss.NewStyle().MarginTop(1).Render(buttons),
			styles.ModalHelpStyle.Render("←/→ select  enter confirm  y/n answer  esc cancel"),
		)
	}

	modal := frame.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return overlayCenter(background, modal, width, height)
}

// overlayCenter composites fg centered over bg.
func overlayCenter(bg, fg string, width, height int) string {
	bgLayer := lipgloss.NewLayer(bg)
	fgLayer := lipgloss.NewLayer(fg)

	x := max((width-lipgloss.Width(fg))/2, 0)
	y := max((height-lipgloss.Height(fg))/2, 0)
	fgLayer.X(x).Y(y).Z(1)

	return lipgloss.NewCompositor(bgLayer, fgLayer).Render()
}
