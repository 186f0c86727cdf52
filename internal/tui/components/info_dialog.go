// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/tally/internal/core/styles"
)

const (
	infoModalMaxHeight = 30
	infoModalMargin    = 4
	infoModalChrome    = 6 // title + divider + help + spacing
	infoModalMinWidth  = 50
)

// InfoStatus marks an info item as granted, partial or denied.
type InfoStatus int

const (
	InfoStatusNone InfoStatus = iota
	InfoStatusPass
	InfoStatusWarn
	InfoStatusFail
)

// InfoItem is a single labeled row in an info section.
type InfoItem struct {
	Label  string
	Value  string
	Status InfoStatus
}

// InfoSection groups related info items under a section title.
type InfoSection struct {
	Title string
	Items []InfoItem
}

// InfoDialogOptions configures an InfoDialog.
type InfoDialogOptions struct {
	Title    string
	Sections []InfoSection
	// Notes is markdown rendered below the sections.
	Notes string
	Help  string
}

// InfoDialog shows structured information in a scrollable modal.
type InfoDialog struct {
	opts     InfoDialogOptions
	viewport viewport.Model
	width    int
}

// NewInfoDialog creates an info dialog sized for a width by height screen.
func NewInfoDialog(opts InfoDialogOptions, width, height int) *InfoDialog {
	modalWidth, modalHeight := infoModalSize(width, height)

	vp := viewport.New(
		viewport.WithWidth(modalWidth-4),
		viewport.WithHeight(max(modalHeight-infoModalChrome, 1)),
	)

	d := &InfoDialog{opts: opts, viewport: vp, width: modalWidth}
	d.viewport.SetContent(d.renderContent())
	return d
}

func infoModalSize(width, height int) (int, int) {
	w := min(max(int(float64(width)*0.65), infoModalMinWidth), width-infoModalMargin)
	h := min(height-infoModalMargin, infoModalMaxHeight)
	return max(w, 10), max(h, infoModalChrome+1)
}

func (d *InfoDialog) renderContent() string {
	separator := styles.TextSurfaceStyle.Render(strings.Repeat("─", max(d.width-6, 1)))
	lines := make([]string, 0)

	for i, section := range d.opts.Sections {
		if i > 0 {
			lines = append(lines, "")
		}
		if section.Title != "" {
			lines = append(lines, styles.HelpDialogSectionStyle.Render(section.Title), separator)
		}
		labelWidth := 0
		for _, item := range section.Items {
			labelWidth = max(labelWidth, lipgloss.Width(item.Label))
		}
		for _, item := range section.Items {
			lines = append(lines, formatInfoItem(item, labelWidth))
		}
	}

	if d.opts.Notes != "" {
		lines = append(lines, "", renderMarkdown(d.opts.Notes, d.width-6))
	}

	return strings.Join(lines, "\n")
}

// renderMarkdown renders md with the active theme, falling back to the raw
// text when the renderer cannot be built.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw notes")
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render notes")
		return md
	}
	return strings.Trim(out, "\n")
}

func formatInfoItem(item InfoItem, labelWidth int) string {
	padded := item.Label + strings.Repeat(" ", max(labelWidth-lipgloss.Width(item.Label), 0))
	label := styles.TextForegroundBoldStyle.Render(padded)
	value := styles.TextMutedStyle.Render(item.Value)

	if icon := statusIcon(item.Status); icon != "" {
		return fmt.Sprintf("%s %s  %s", icon, label, value)
	}
	return fmt.Sprintf("%s  %s", label, value)
}

func statusIcon(s InfoStatus) string {
	switch s {
	case InfoStatusPass:
		return styles.TextSuccessStyle.Render("✔")
	case InfoStatusWarn:
		return styles.TextWarningStyle.Render("●")
	case InfoStatusFail:
		return styles.TextErrorStyle.Render("✘")
	default:
		return ""
	}
}

func (d *InfoDialog) ScrollUp() {
	d.viewport.ScrollUp(1)
}

func (d *InfoDialog) ScrollDown() {
	d.viewport.ScrollDown(1)
}

// Overlay renders the dialog centered over the provided background.
func (d *InfoDialog) Overlay(background string, width, height int) string {
	modalWidth, modalHeight := infoModalSize(width, height)

	title := d.opts.Title
	if d.viewport.TotalLineCount() > d.viewport.VisibleLineCount() {
		title += styles.TextMutedStyle.Render(fmt.Sprintf(" (%.0f%%)", d.viewport.ScrollPercent()*100))
	}

	divider := styles.TextSurfaceStyle.Render(strings.Repeat("─", max(modalWidth-6, 1)))
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(title),
		divider,
		d.viewport.View(),
		styles.ModalHelpStyle.Render(d.opts.Help),
	)

	modal := styles.ModalStyle.
		Width(modalWidth).
		Height(modalHeight).
		Render(content)

	return overlay(background, modal, width, height)
}

// overlay composites modal centered over background.
func overlay(background, modal string, width, height int) string {
	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)

	centerX := max((width-lipgloss.Width(modal))/2, 0)
	centerY := max((height-lipgloss.Height(modal))/2, 0)
	modalLayer.X(centerX).Y(centerY).Z(1)

	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}
