package components

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tally/internal/core/styles"
)

// HelpEntry represents a single keyboard shortcut entry.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpDialogSection groups related help entries under a title.
type HelpDialogSection struct {
	Title   string
	Entries []HelpEntry
}

// HelpDialog displays the keyboard shortcuts. Sections flow into two
// columns when the screen is wide enough.
type HelpDialog struct {
	title    string
	sections []HelpDialogSection
	width    int
}

func NewHelpDialog(title string, sections []HelpDialogSection, width int) *HelpDialog {
	return &HelpDialog{
		title:    title,
		sections: sections,
		width:    width,
	}
}

func (h *HelpDialog) View() string {
	keyWidth := 0
	for _, s := range h.sections {
		for _, e := range s.Entries {
			keyWidth = max(keyWidth, lipgloss.Width(e.Key))
		}
	}
	keyWidth += 2

	blocks := make([]string, 0, len(h.sections))
	for _, section := range h.sections {
		blocks = append(blocks, renderSection(section, keyWidth))
	}

	var body string
	if h.width >= 100 && len(blocks) > 1 {
		half := (len(blocks) + 1) / 2
		left := lipgloss.JoinVertical(lipgloss.Left, interleave(blocks[:half])...)
		right := lipgloss.JoinVertical(lipgloss.Left, interleave(blocks[half:])...)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, interleave(blocks)...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TextForegroundBoldStyle.Render(h.title),
		"",
		body,
		styles.HelpDialogHelpStyle.Render("esc/? close"),
	)

	return styles.HelpDialogModalStyle.Render(content)
}

// Overlay renders the help dialog as a layer over the given background.
func (h *HelpDialog) Overlay(background string, width, height int) string {
	return overlay(background, h.View(), width, height)
}

func renderSection(section HelpDialogSection, keyWidth int) string {
	lines := make([]string, 0, len(section.Entries)+2)
	if section.Title != "" {
		lines = append(lines,
			styles.HelpDialogSectionStyle.Render(section.Title),
			styles.TextMutedStyle.Render(strings.Repeat("─", 25)),
		)
	}
	for _, entry := range section.Entries {
		lines = append(lines, formatKeyDesc(entry.Key, entry.Desc, keyWidth))
	}
	return strings.Join(lines, "\n")
}

// interleave puts a blank line between blocks.
func interleave(blocks []string) []string {
	out := make([]string, 0, len(blocks)*2)
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, b)
	}
	return out
}

func formatKeyDesc(key, desc string, keyWidth int) string {
	padded := key + strings.Repeat(" ", max(keyWidth-lipgloss.Width(key), 0))
	return styles.TextPrimaryBoldStyle.Render(padded) + styles.TextForegroundStyle.Render(desc)
}
