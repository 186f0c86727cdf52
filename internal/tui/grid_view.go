package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/internal/core/styles"
)

const (
	markerWidth     = 2
	minColumnWidth  = 6
	defaultColWidth = 14
	gridChrome      = 3 // header + status + hints
)

// runFunc turns a blocking controller call into a command bound to the
// model's context.
type runFunc func(fn func(ctx context.Context) tea.Msg) tea.Cmd

// GridView renders one grid and translates keys into controller calls.
type GridView struct {
	tab  int
	spec console.GridSpec
	ctrl *grid.Controller
	keys KeyMap
	run  runFunc
	// timeout bounds fetches; commits wait on the user and are unbounded.
	timeout time.Duration

	cursor int
	col    int
	offset int
	width  int
	height int

	input   textinput.Model
	editing grid.ID
	status  string
}

func NewGridView(tab int, spec console.GridSpec, ctrl *grid.Controller, keys KeyMap, run runFunc, timeout time.Duration) *GridView {
	ti := textinput.New()
	ti.Prompt = ""
	inputStyles := textinput.DefaultStyles(true)
	inputStyles.Cursor.Color = styles.ColorPrimary
	ti.SetStyles(inputStyles)

	return &GridView{
		tab:     tab,
		spec:    spec,
		ctrl:    ctrl,
		keys:    keys,
		run:     run,
		timeout: timeout,
		input:   ti,
	}
}

func (g *GridView) Controller() *grid.Controller { return g.ctrl }

func (g *GridView) Spec() console.GridSpec { return g.spec }

func (g *GridView) Title() string { return g.spec.Title }

// Editing reports whether a cell editor has focus.
func (g *GridView) Editing() bool { return g.editing != "" }

func (g *GridView) SetSize(width, height int) {
	g.width = width
	g.height = height
}

// Load returns a command that fetches the grid.
func (g *GridView) Load() tea.Cmd {
	tab, timeout := g.tab, g.timeout
	return g.run(func(ctx context.Context) tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return gridLoadedMsg{tab: tab, err: g.ctrl.Load(ctx)}
	})
}

func (g *GridView) columns() []entity.Column {
	return g.spec.Schema.Columns
}

// selected returns the row under the cursor, clamping the cursor first.
func (g *GridView) selected() (grid.Row, bool) {
	rows := g.ctrl.Rows()
	if len(rows) == 0 {
		g.cursor = 0
		return grid.Row{}, false
	}
	g.cursor = min(max(g.cursor, 0), len(rows)-1)
	return rows[g.cursor], true
}

// Update handles a key press. It returns the commands for any backend work
// the key started.
func (g *GridView) Update(msg tea.KeyPressMsg) tea.Cmd {
	if g.Editing() {
		return g.updateEditing(msg)
	}

	g.status = ""
	switch {
	case key.Matches(msg, g.keys.Up):
		g.cursor--
		g.selected()
	case key.Matches(msg, g.keys.Down):
		g.cursor++
		g.selected()
	case key.Matches(msg, g.keys.Left):
		g.col = max(g.col-1, 0)
	case key.Matches(msg, g.keys.Right):
		g.col = min(g.col+1, len(g.columns())-1)
	case key.Matches(msg, g.keys.Reload):
		return g.Load()
	case key.Matches(msg, g.keys.Add):
		return g.add()
	case key.Matches(msg, g.keys.Edit):
		return g.edit()
	case key.Matches(msg, g.keys.Delete):
		return g.delete()
	}
	return nil
}

func (g *GridView) add() tea.Cmd {
	id, err := g.ctrl.StartAdd()
	if err != nil {
		g.report(err)
		return nil
	}
	if g.ctrl.DialogConfig() != nil {
		return nil
	}
	g.cursor = len(g.ctrl.Rows()) - 1
	g.col = g.editableFrom(0, 1)
	g.editing = id
	return g.loadInput()
}

func (g *GridView) edit() tea.Cmd {
	row, ok := g.selected()
	if !ok {
		return nil
	}
	if g.ctrl.DialogConfig() != nil {
		g.report(g.ctrl.OpenDialog(row.ID))
		return nil
	}

	col := g.editableFrom(g.col, 1)
	if col < 0 {
		g.report(grid.ErrNotEditable)
		return nil
	}
	if err := g.ctrl.StartEdit(row.ID, g.columns()[col].Field); err != nil {
		g.report(err)
		return nil
	}
	g.col = col
	g.editing = row.ID
	return g.loadInput()
}

func (g *GridView) delete() tea.Cmd {
	row, ok := g.selected()
	if !ok {
		return nil
	}
	if !g.ctrl.Capabilities().Deletable {
		g.report(grid.ErrNotDeletable)
		return nil
	}

	tab, id := g.tab, row.ID
	return g.run(func(ctx context.Context) tea.Msg {
		deleted, err := g.ctrl.Delete(ctx, id, access.FromContext(ctx))
		return rowDeletedMsg{tab: tab, id: id, deleted: deleted, err: err}
	})
}

func (g *GridView) updateEditing(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, g.keys.Cancel):
		id := g.editing
		g.stopEditing()
		g.report(g.ctrl.Cancel(id))
		g.selected()
		return nil
	case key.Matches(msg, g.keys.NextCell):
		return g.moveCell(1)
	case key.Matches(msg, g.keys.PrevCell):
		return g.moveCell(-1)
	case key.Matches(msg, g.keys.Save):
		return g.save()
	}

	var cmd tea.Cmd
	g.input, cmd = g.input.Update(msg)
	return cmd
}

// storeInput parses the cell editor and records it as a pending value.
func (g *GridView) storeInput() error {
	col := g.columns()[g.col]
	v, err := col.Parse(g.input.Value())
	if err != nil {
		return err
	}
	return g.ctrl.SetValue(g.editing, col.Field, v)
}

func (g *GridView) moveCell(delta int) tea.Cmd {
	if err := g.storeInput(); err != nil {
		g.status = err.Error()
		return nil
	}
	next := g.editableFrom(g.col+delta, delta)
	if next < 0 {
		return nil
	}
	g.col = next
	g.status = ""
	g.report(g.ctrl.StartEdit(g.editing, g.columns()[next].Field))
	return g.loadInput()
}

func (g *GridView) save() tea.Cmd {
	if err := g.storeInput(); err != nil {
		g.status = err.Error()
		return nil
	}

	tab, id := g.tab, g.editing
	g.stopEditing()
	return g.run(func(ctx context.Context) tea.Msg {
		row, err := g.ctrl.Save(ctx, id)
		return rowSavedMsg{tab: tab, id: id, row: row, err: err}
	})
}

// Resume puts the cell editor back on a row the controller returned to edit
// mode after a failed save.
func (g *GridView) Resume(id grid.ID) tea.Cmd {
	state := g.ctrl.State(id)
	if !state.Editing() {
		return nil
	}
	for i, r := range g.ctrl.Rows() {
		if r.ID == id {
			g.cursor = i
		}
	}
	if c := g.columnIndex(state.FocusField); c >= 0 {
		g.col = c
	} else {
		g.col = g.editableFrom(0, 1)
	}
	g.editing = id
	return g.loadInput()
}

func (g *GridView) stopEditing() {
	g.editing = ""
	g.input.Blur()
}

func (g *GridView) loadInput() tea.Cmd {
	col := g.columns()[g.col]
	var value any
	for _, r := range g.ctrl.Rows() {
		if r.ID == g.editing {
			value = r.Get(col.Field)
		}
	}
	g.input.SetValue(col.Format(value))
	g.input.CursorEnd()
	g.input.SetWidth(max(g.columnWidth(col)-1, 1))
	return g.input.Focus()
}

// editableFrom returns the first editable column at or after from, walking
// in direction step. It returns -1 when there is none.
func (g *GridView) editableFrom(from, step int) int {
	cols := g.columns()
	for i := from; i >= 0 && i < len(cols); i += step {
		if !cols[i].ReadOnly {
			return i
		}
	}
	if step > 0 && from > 0 {
		return g.editableFrom(from-1, -1)
	}
	return -1
}

func (g *GridView) columnIndex(field string) int {
	for i, c := range g.columns() {
		if c.Field == field {
			return i
		}
	}
	return -1
}

// report shows a refused action in the status line.
func (g *GridView) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, grid.ErrNotAddable), errors.Is(err, grid.ErrNotEditable), errors.Is(err, grid.ErrNotDeletable):
		g.status = styles.IconLock + " " + err.Error()
	default:
		g.status = err.Error()
	}
}

// SetStatus replaces the status line message.
func (g *GridView) SetStatus(msg string) { g.status = msg }

func (g *GridView) columnWidth(c entity.Column) int {
	w := c.Width
	if w <= 0 {
		w = defaultColWidth
	}
	return max(w, lipgloss.Width(c.Title)+1, minColumnWidth)
}

// View renders the grid. spin is the spinner frame shown while the
// controller has backend calls in flight.
func (g *GridView) View(spin string) string {
	rows := g.ctrl.Rows()
	g.selected()

	lines := []string{g.renderHeader()}

	body := max(g.height-gridChrome, 1)
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.cursor >= g.offset+body {
		g.offset = g.cursor - body + 1
	}

	switch {
	case !g.ctrl.Loaded() && g.ctrl.Loading():
		lines = append(lines, styles.GridLoadingStyle.Render(spin+" Loading "+g.spec.Title+"…"))
	case len(rows) == 0:
		msg := "No " + strings.ToLower(g.spec.Title) + " yet."
		if g.ctrl.Capabilities().Addable {
			msg += " Press a to add one."
		}
		lines = append(lines, styles.GridEmptyStyle.Render(msg))
	default:
		end := min(g.offset+body, len(rows))
		for i := g.offset; i < end; i++ {
			lines = append(lines, g.renderRow(rows[i], i == g.cursor))
		}
	}

	for len(lines) < body+1 {
		lines = append(lines, "")
	}
	lines = append(lines, g.renderStatus(len(rows), spin), g.renderHints())
	return strings.Join(lines, "\n")
}

func (g *GridView) renderHeader() string {
	cells := make([]string, 0, len(g.columns()))
	for _, c := range g.columns() {
		cells = append(cells, fit(c.Title, g.columnWidth(c)))
	}
	return styles.GridHeaderStyle.Render(fit("", markerWidth) + strings.Join(cells, " "))
}

func (g *GridView) renderRow(row grid.Row, isCursor bool) string {
	state := g.ctrl.State(row.ID)

	marker := ""
	switch {
	case state.Editing():
		marker = styles.IconEdit
	case row.IsNew:
		marker = styles.IconNew
	case g.ctrl.DialogConfig() != nil && isCursor:
		marker = styles.IconDialog
	}

	cells := make([]string, 0, len(g.columns()))
	for i, c := range g.columns() {
		w := g.columnWidth(c)
		text := fit(c.Format(row.Get(c.Field)), w)
		switch {
		case row.ID == g.editing && i == g.col:
			text = styles.GridEditCellStyle.Render(fit(g.input.View(), w))
		case c.ReadOnly:
			text = styles.GridReadOnlyStyle.Render(text)
		}
		cells = append(cells, text)
	}
	line := fit(marker, markerWidth) + strings.Join(cells, " ")

	switch {
	case state.Editing():
		return styles.GridEditRowStyle.Render(line)
	case isCursor:
		return styles.GridCursorRowStyle.Render(line)
	case row.IsNew:
		return styles.GridNewRowStyle.Render(line)
	default:
		return styles.GridCellStyle.Render(line)
	}
}

func (g *GridView) renderStatus(count int, spin string) string {
	parts := []string{fmt.Sprintf("%s · %d rows", g.spec.Title, count)}
	if g.ctrl.Loading() {
		parts = append(parts, spin+" working")
	}
	status := styles.GridStatusStyle.Render(strings.Join(parts, " · "))
	if g.status != "" {
		status += "  " + styles.TextWarningStyle.Render(g.status)
	}
	return status
}

// renderHints lists the actions the controller offers for the current row
// and the toolbar, followed by the cell editor's own keys while editing.
func (g *GridView) renderHints() string {
	var kinds []grid.ActionKind
	for _, a := range g.ctrl.ToolbarActions() {
		kinds = append(kinds, a.Kind)
	}
	if row, ok := g.selected(); ok {
		for _, a := range g.ctrl.Actions(row.ID) {
			kinds = append(kinds, a.Kind)
		}
	}

	hints := make([]string, 0, len(kinds))
	for _, k := range kinds {
		hints = append(hints, styles.GridActionStyle.Render("["+actionLabel(k, g.keys)+"]"))
	}

	bindings := g.keys.ShortHelp()[3:]
	if g.Editing() {
		bindings = g.keys.EditHelp()[2:]
	}
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, styles.TextMutedStyle.Render(h.Key+" "+h.Desc))
	}
	return strings.Join(hints, " ")
}

func actionLabel(kind grid.ActionKind, keys KeyMap) string {
	var b key.Binding
	switch kind {
	case grid.ActionAdd:
		b = keys.Add
	case grid.ActionEdit, grid.ActionOpenDialog:
		b = keys.Edit
	case grid.ActionSave:
		b = keys.Save
	case grid.ActionCancel:
		b = keys.Cancel
	case grid.ActionDelete:
		b = keys.Delete
	default:
		return string(kind)
	}
	return b.Help().Key + " " + string(kind)
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int) string {
	s = ansi.Truncate(s, w, "…")
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
