package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/eventbus/testbus"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/internal/core/notify"
	"github.com/colonyops/tally/internal/data/stores"
	"github.com/colonyops/tally/pkg/tuitest"
)

const cmdWait = time.Second

func newTestModel(t *testing.T, role string) (Model, *console.App) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	database, err := console.OpenDatabase(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store, err := console.OpenStore(context.Background(), &cfg, database)
	require.NoError(t, err)

	bus := testbus.New(t)
	app := console.NewApp(&cfg, store, bus.EventBus, notify.NewBus(stores.NewNotifyStore(database)))
	app.Prefs = stores.NewKVStore(database)

	m := New(Deps{App: app}, Opts{Identity: access.Identity{User: "pat", Role: role}})
	m = update(t, m, tuitest.WindowSize(160, 40))
	return m, app
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// press sends one message and returns the command it produced.
func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// run executes cmd and any batched commands, returning their messages.
// Commands still blocked after cmdWait are abandoned.
func run(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, run(t, c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(cmdWait):
		return nil
	}
}

// settle feeds the messages of interest from cmd back into the model.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range run(t, cmd) {
		switch msg.(type) {
		case gridLoadedMsg, rowSavedMsg, rowDeletedMsg, dialogSubmittedMsg:
			m = update(t, m, msg)
		}
	}
	return m
}

func loadActive(t *testing.T, m Model) Model {
	t.Helper()
	return settle(t, m, m.activeTab().Load())
}

func view(m Model) string {
	return tuitest.StripANSI(fmt.Sprint(m.View().Content))
}

func fetch(t *testing.T, app *console.App, kind string) ([]grid.Row, error) {
	t.Helper()
	svc, err := app.Service(kind)
	require.NoError(t, err)
	return svc.Fetch(context.Background())
}

func tabIndex(t *testing.T, m Model, name string) int {
	t.Helper()
	for i, tab := range m.tabs {
		if tab.Controller().Name() == name {
			return i
		}
	}
	t.Fatalf("no tab %q", name)
	return -1
}

func seed(t *testing.T, app *console.App, kind string, values grid.Values) grid.ID {
	t.Helper()
	svc, err := app.Service(kind)
	require.NoError(t, err)
	id, err := svc.Create(context.Background(), values)
	require.NoError(t, err)
	return id
}

func TestModel_TabsFollowRole(t *testing.T) {
	m, _ := newTestModel(t, "admin")
	require.NotEmpty(t, m.tabs)
	assert.Equal(t, "customers", m.tabs[0].Controller().Name())

	out := view(m)
	assert.Contains(t, out, "Customers")
	assert.Contains(t, out, "Invoices")
	assert.Contains(t, out, "pat (admin)")

	none, _ := newTestModel(t, "nobody")
	assert.Empty(t, none.tabs)
	assert.Contains(t, view(none), "has no grids")
}

func TestModel_LoadRendersRows(t *testing.T) {
	m, app := newTestModel(t, "admin")
	seed(t, app, "customers", grid.Values{"name": "Acme", "city": "Lyon"})
	seed(t, app, "customers", grid.Values{"name": "Globex", "city": "Oslo"})

	m = loadActive(t, m)

	out := view(m)
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Globex")
	assert.Contains(t, out, "2 rows")
}

func TestModel_InlineAddSaves(t *testing.T) {
	m, app := newTestModel(t, "admin")
	m = loadActive(t, m)

	m = update(t, m, tuitest.KeyPress('a'))
	require.True(t, m.activeTab().Editing())

	m = update(t, m, tuitest.Type("Initech")...)
	m, cmd := press(t, m, tuitest.KeyEnter())
	assert.False(t, m.activeTab().Editing())

	m = settle(t, m, cmd)
	assert.Contains(t, view(m), "Saved.")

	rows, err := fetch(t, app, "customers")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Initech", rows[0].Get("name"))

	inv, ok := run(t, m.waitForInvalidation())[0].(gridInvalidatedMsg)
	require.True(t, ok)
	assert.Equal(t, "customers", inv.grid)
}

func TestModel_ValidationShowsAlert(t *testing.T) {
	m, _ := newTestModel(t, "admin")
	m = loadActive(t, m)

	m = update(t, m, tuitest.KeyPress('a'))
	m, cmd := press(t, m, tuitest.KeyEnter())
	m = settle(t, m, cmd)

	require.NotNil(t, m.alert)
	assert.Contains(t, m.alert.Message(), "name")
	assert.True(t, m.activeTab().Editing(), "new row stays in edit mode")

	m = update(t, m, tuitest.KeyEsc())
	assert.Nil(t, m.alert)

	m = update(t, m, tuitest.KeyEsc())
	assert.False(t, m.activeTab().Editing())
	assert.Empty(t, m.activeTab().Controller().Rows())
}

func TestModel_CellParseErrorKeepsEditing(t *testing.T) {
	m, _ := newTestModel(t, "admin")
	m.active = tabIndex(t, m, "products")
	m = loadActive(t, m)

	m = update(t, m, tuitest.KeyPress('a'))
	m = update(t, m, tuitest.Type("P-1")...)
	m = update(t, m, tuitest.KeyTab())
	m = update(t, m, tuitest.Type("Widget")...)
	m = update(t, m, tuitest.KeyTab(), tuitest.KeyTab())
	m = update(t, m, tuitest.Type("cheap")...)
	m = update(t, m, tuitest.KeyTab())

	assert.True(t, m.activeTab().Editing())
	assert.Contains(t, view(m), "price must be an amount")
}

func TestModel_DuplicateConfirmDeclined(t *testing.T) {
	m, app := newTestModel(t, "admin")
	seed(t, app, "customers", grid.Values{"name": "Acme"})
	m = loadActive(t, m)

	m = update(t, m, tuitest.KeyPress('a'))
	m = update(t, m, tuitest.Type("acme")...)
	m, save := press(t, m, tuitest.KeyEnter())

	saved := make(chan tea.Msg, 1)
	go func() { saved <- save() }()

	req := run(t, m.bridge.Wait())
	require.Len(t, req, 1)
	m = update(t, m, req[0])
	require.NotNil(t, m.confirm)
	assert.Contains(t, m.confirm.req.prompt, "already exists")

	m = update(t, m, tuitest.KeyPress('n'))
	assert.Nil(t, m.confirm)

	select {
	case msg := <-saved:
		m = update(t, m, msg)
	case <-time.After(cmdWait):
		t.Fatal("save did not finish after the prompt was declined")
	}

	assert.Contains(t, view(m), "Not saved.")
	assert.True(t, m.activeTab().Editing())

	rows, err := fetch(t, app, "customers")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestModel_DeleteConfirmed(t *testing.T) {
	m, app := newTestModel(t, "admin")
	id := seed(t, app, "customers", grid.Values{"name": "Acme"})
	m = loadActive(t, m)

	m, del := press(t, m, tuitest.KeyPress('d'))
	deleted := make(chan tea.Msg, 1)
	go func() { deleted <- del() }()

	req := run(t, m.bridge.Wait())
	require.Len(t, req, 1)
	m = update(t, m, req[0])
	assert.Contains(t, m.confirm.req.prompt, string(id))

	m = update(t, m, tuitest.KeyEnter())

	select {
	case msg := <-deleted:
		m = update(t, m, msg)
	case <-time.After(cmdWait):
		t.Fatal("delete did not finish after confirmation")
	}

	assert.Contains(t, view(m), "Deleted "+string(id))
	assert.Empty(t, m.activeTab().Controller().Rows())
}

func TestModel_ViewerCannotAdd(t *testing.T) {
	m, _ := newTestModel(t, "viewer")
	m = loadActive(t, m)

	m = update(t, m, tuitest.KeyPress('a'))

	assert.False(t, m.activeTab().Editing())
	assert.Contains(t, view(m), "does not allow adding rows")
}

func TestModel_DialogAddInvoice(t *testing.T) {
	m, app := newTestModel(t, "admin")
	m.active = tabIndex(t, m, "invoices")
	m = loadActive(t, m)

	m = update(t, m, tuitest.KeyPress('a'))
	require.NotNil(t, m.editor)
	assert.Contains(t, view(m), "New Invoices")

	m = update(t, m, tuitest.Type("INV-1")...)
	m = update(t, m, tuitest.KeyTab())
	m = update(t, m, tuitest.Type("7")...)
	m = update(t, m, tuitest.KeyTab(), tuitest.KeyTab())
	m = update(t, m, tuitest.Type("2026-03-01")...)
	m, cmd := press(t, m, tuitest.KeyCtrl('s'))

	m = settle(t, m, cmd)
	assert.Nil(t, m.editor)

	rows, err := fetch(t, app, "invoices")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-1", rows[0].Get("number"))
	assert.Equal(t, "2026-03-01", grid.FormatValue(rows[0].Get("issued_on")))
}

func TestModel_DialogShowsFieldErrors(t *testing.T) {
	m, _ := newTestModel(t, "admin")
	m.active = tabIndex(t, m, "invoices")
	m = loadActive(t, m)

	m = update(t, m, tuitest.KeyPress('a'))
	m = update(t, m, tuitest.KeyTab())
	m = update(t, m, tuitest.Type("soon")...)
	m = update(t, m, tuitest.KeyCtrl('s'))

	require.NotNil(t, m.editor)
	assert.Contains(t, view(m), "must be a whole number")

	m = update(t, m, tuitest.KeyEsc())
	assert.Nil(t, m.editor)
	assert.False(t, m.activeTab().Controller().Dialog().Open)
}

func TestModel_ViewerDialogIsReadOnly(t *testing.T) {
	m, app := newTestModel(t, "viewer")
	seed(t, app, "invoices", grid.Values{"number": "INV-9", "customer_id": int64(7)})
	m.active = tabIndex(t, m, "invoices")
	m = loadActive(t, m)

	m = update(t, m, tuitest.KeyPress('e'))
	require.NotNil(t, m.editor)
	assert.Contains(t, view(m), "(read only)")

	m = update(t, m, tuitest.Type("X")...)
	m, cmd := press(t, m, tuitest.KeyCtrl('s'))
	for _, msg := range run(t, cmd) {
		assert.IsNotType(t, dialogSubmittedMsg{}, msg)
	}
	require.NotNil(t, m.editor, "dialog stays open")
	assert.Contains(t, view(m), "your role cannot change invoices")

	rows, err := fetch(t, app, "invoices")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-9", rows[0].Get("number"))
}

func TestModel_NotificationsBecomeToasts(t *testing.T) {
	m, app := newTestModel(t, "admin")

	app.Notify.Infof("customer 9 created")

	msgs := run(t, m.notifications.WaitForSignal())
	require.Len(t, msgs, 1)
	m = update(t, m, msgs[0])

	assert.True(t, m.toasts.HasToasts())
	assert.Contains(t, view(m), "customer 9 created")
}

func TestModel_HelpAndInfo(t *testing.T) {
	m, _ := newTestModel(t, "admin")
	m.active = tabIndex(t, m, "prices")
	m = loadActive(t, m)

	m = update(t, m, tuitest.KeyPress('?'))
	require.NotNil(t, m.help)
	assert.Contains(t, view(m), "delete row")
	m = update(t, m, tuitest.KeyEsc())
	assert.Nil(t, m.help)

	m = update(t, m, tuitest.KeyPress('i'))
	require.NotNil(t, m.info)
	out := view(m)
	assert.Contains(t, out, "composite of product_id, customer_id")
	assert.Contains(t, out, "allowed")
	m = update(t, m, tuitest.KeyPress('i'))
	assert.Nil(t, m.info)
}

func TestModel_SwitchTabLoads(t *testing.T) {
	m, app := newTestModel(t, "admin")
	seed(t, app, "products", grid.Values{"sku": "P-1", "name": "Widget", "price": 4.5})

	m, cmd := press(t, m, tuitest.KeyTab())
	assert.Equal(t, 1, m.active)
	m = settle(t, m, cmd)

	assert.Contains(t, view(m), "Widget")
	assert.True(t, m.activeTab().Controller().Loaded())
}

func TestModel_RemembersLastTab(t *testing.T) {
	m, app := newTestModel(t, "admin")
	prices := tabIndex(t, m, "prices")

	for m.active != prices {
		var cmd tea.Cmd
		m, cmd = press(t, m, tuitest.KeyTab())
		run(t, cmd)
	}

	reopened := New(Deps{App: app}, Opts{Identity: access.Identity{User: "pat", Role: "admin"}})
	assert.Equal(t, prices, reopened.active)

	other := New(Deps{App: app}, Opts{Identity: access.Identity{User: "sam", Role: "admin"}})
	assert.Equal(t, 0, other.active, "tabs are remembered per user")
}

func TestModel_QuitReleasesWaiters(t *testing.T) {
	m, _ := newTestModel(t, "admin")
	confirms, invalidations := m.bridge.Wait(), m.waitForInvalidation()

	m, _ = press(t, m, tuitest.KeyCtrl('c'))
	require.True(t, m.quitting)

	for _, cmd := range []tea.Cmd{confirms, invalidations} {
		got := make(chan tea.Msg, 1)
		go func() { got <- cmd() }()
		select {
		case msg := <-got:
			assert.Nil(t, msg)
		case <-time.After(time.Second):
			t.Fatal("waiting command still blocked after quit")
		}
	}
}
