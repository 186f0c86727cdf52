package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/colonyops/tally/internal/tui/components"
)

// KeyMap holds every binding the console responds to.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Edit     key.Binding
	Add      key.Binding
	Delete   key.Binding
	Reload   key.Binding
	Schema   key.Binding
	Dismiss  key.Binding
	Help     key.Binding
	Quit     key.Binding
	Save     key.Binding
	Cancel   key.Binding
	NextCell key.Binding
	PrevCell key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous column")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		NextTab:  key.NewBinding(key.WithKeys("tab", "]"), key.WithHelp("tab", "next grid")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab", "["), key.WithHelp("shift+tab", "previous grid")),
		Edit:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter/e", "edit row")),
		Add:      key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add row")),
		Delete:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete row")),
		Reload:   key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "reload")),
		Schema:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "grid info")),
		Dismiss:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "dismiss toast")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Save:     key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "save row")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel edit")),
		NextCell: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next cell")),
		PrevCell: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous cell")),
	}
}

// ShortHelp returns the bindings shown in the status bar while browsing.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Add, k.Delete, k.NextTab, k.Help, k.Quit}
}

// EditHelp returns the bindings shown in the status bar while editing a row.
func (k KeyMap) EditHelp() []key.Binding {
	return []key.Binding{k.Save, k.Cancel, k.NextCell, k.PrevCell}
}

// HelpSections groups the bindings for the help dialog.
func (k KeyMap) HelpSections() []components.HelpDialogSection {
	return []components.HelpDialogSection{
		{Title: "Navigation", Entries: entries(k.Up, k.Down, k.Left, k.Right, k.NextTab, k.PrevTab)},
		{Title: "Rows", Entries: entries(k.Edit, k.Add, k.Delete, k.Reload)},
		{Title: "Editing", Entries: entries(k.Save, k.Cancel, k.NextCell, k.PrevCell)},
		{Title: "General", Entries: entries(k.Schema, k.Dismiss, k.Help, k.Quit)},
	}
}

func entries(bindings ...key.Binding) []components.HelpEntry {
	out := make([]components.HelpEntry, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, components.HelpEntry{Key: h.Key, Desc: h.Desc})
	}
	return out
}
