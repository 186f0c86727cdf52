// Package tui is the interactive console: one tab per grid the signed-in
// role may open, with inline and dialog editing, confirmation modals and
// toast notifications.
package tui

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/console"
	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/grid"
	"github.com/colonyops/tally/internal/core/kv"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/notify"
	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/internal/tui/components"
)

const (
	invalidationBuffer = 32

	// The last open tab is remembered per user for this long.
	lastTabTTL       = 30 * 24 * time.Hour
	lastTabNamespace = "tui.tab"
)

// Deps are the services the TUI drives.
type Deps struct {
	App *console.App
}

// Opts configures a TUI session.
type Opts struct {
	Identity access.Identity
	// Warnings are shown as toasts on startup.
	Warnings []string
	// ConfigPath, when set, is watched and reloaded on change.
	ConfigPath string
}

// pendingConfirm is a confirmation modal waiting on the user.
type pendingConfirm struct {
	modal Modal
	req   confirmRequest
}

// Model is the root bubbletea model.
type Model struct {
	app      *console.App
	identity access.Identity
	ctx      context.Context
	cancel   context.CancelFunc
	log      zerolog.Logger
	keys     KeyMap

	tabs    []*GridView
	active  int
	lastTab *kv.TypedKV[string]

	bridge        *confirmBridge
	configWatcher *ConfigWatcher
	invalidations chan string
	notifications *NotificationBuffer
	toasts        *ToastController
	toastView     *ToastView
	spinner       spinner.Model

	confirm *pendingConfirm
	alert   *Modal
	editor  *DialogEditor
	help    *components.HelpDialog
	info    *components.InfoDialog

	width    int
	height   int
	quitting bool
}

// New builds the model. Grids are resolved for the identity's role; grid
// controllers confirm through modals and report through toasts.
func New(deps Deps, opts Opts) Model {
	app := deps.App
	ctx, cancel := context.WithCancel(access.WithIdentity(context.Background(), opts.Identity))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.GridLoadingStyle

	toasts := NewToastController(app.Config.TUI.ToastDuration)
	m := Model{
		app:           app,
		identity:      opts.Identity,
		ctx:           ctx,
		cancel:        cancel,
		log:           logging.Component("tui"),
		keys:          DefaultKeyMap(),
		bridge:        newConfirmBridge(),
		invalidations: make(chan string, invalidationBuffer),
		notifications: NewNotificationBuffer(),
		toasts:        toasts,
		toastView:     NewToastView(toasts),
		spinner:       s,
		width:         80,
		height:        24,
	}

	timeout := app.Config.TUI.RequestTimeout
	for i, spec := range app.Grids(opts.Identity.Role) {
		ctrl := app.Controller(spec, grid.WithConfirmer(m.bridge))
		m.tabs = append(m.tabs, NewGridView(i, spec, ctrl, m.keys, m.runner(), timeout))
	}
	if app.Prefs != nil {
		m.lastTab = kv.Scoped[string](app.Prefs, lastTabNamespace)
		m.active = m.restoreTab()
	}

	invalidations := m.invalidations
	app.Bus.SubscribeGridInvalidated(func(p eventbus.GridInvalidatedPayload) {
		select {
		case invalidations <- p.Grid:
		default:
		}
	})
	app.Notify.Subscribe(m.notifications.Push)

	if opts.ConfigPath != "" {
		watcher, err := NewConfigWatcher(opts.ConfigPath, app.Config.DataDir)
		if err != nil {
			m.log.Warn().Err(err).Str("path", opts.ConfigPath).Msg("config changes will not be picked up")
		} else {
			m.configWatcher = watcher
		}
	}

	for _, w := range opts.Warnings {
		m.toasts.Push(notify.Notification{Level: notify.LevelWarning, Message: w})
	}

	return m
}

// runner returns the runFunc grid views use. Calls inherit the model's
// context and are abandoned when the TUI quits.
func (m Model) runner() runFunc {
	ctx := m.ctx
	return func(fn func(ctx context.Context) tea.Msg) tea.Cmd {
		return func() tea.Msg {
			return fn(ctx)
		}
	}
}

func (m Model) Init() tea.Cmd {
	m.app.Bus.PublishTuiStarted(eventbus.TUIStartedPayload{})

	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.bridge.Wait(),
		m.notifications.WaitForSignal(),
		m.waitForInvalidation(),
	}
	if tab := m.activeTab(); tab != nil {
		cmds = append(cmds, tab.Load())
	}
	if m.configWatcher != nil {
		cmds = append(cmds, m.configWatcher.Start())
	}
	if m.toasts.HasToasts() {
		m.toasts.SetTicking(true)
		cmds = append(cmds, scheduleToastTick())
	}
	return tea.Batch(cmds...)
}

func (m Model) waitForInvalidation() tea.Cmd {
	ch, done := m.invalidations, m.ctx.Done()
	return func() tea.Msg {
		select {
		case name := <-ch:
			return gridInvalidatedMsg{grid: name}
		case <-done:
			return nil
		}
	}
}

func (m Model) activeTab() *GridView {
	if len(m.tabs) == 0 {
		return nil
	}
	return m.tabs[m.active]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, tab := range m.tabs {
			tab.SetSize(msg.Width, max(msg.Height-tabBarHeight, 1))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case gridLoadedMsg:
		if msg.err != nil {
			m.tabs[msg.tab].SetStatus("load failed")
		}
		return m, nil

	case rowSavedMsg:
		return m.handleRowSaved(msg)

	case rowDeletedMsg:
		return m.handleRowDeleted(msg)

	case dialogSubmittedMsg:
		if m.editor == nil {
			return m, nil
		}
		cmd := m.editor.Done(msg)
		if m.editor.Closed() {
			m.editor = nil
			m.tabs[msg.tab].SetStatus("Saved.")
		}
		return m, cmd

	case gridInvalidatedMsg:
		return m, tea.Batch(m.reload(msg.grid), m.waitForInvalidation())

	case configChangedMsg:
		return m.handleConfigChanged(msg)

	case confirmRequestMsg:
		m.confirm = &pendingConfirm{modal: NewModal("Confirm", msg.req.prompt), req: msg.req}
		return m, nil

	case drainNotificationsMsg:
		for _, n := range m.notifications.Drain() {
			m.toasts.Push(n)
		}
		cmds := []tea.Cmd{m.notifications.WaitForSignal()}
		if m.toasts.HasToasts() && !m.toasts.Ticking() {
			m.toasts.SetTicking(true)
			cmds = append(cmds, scheduleToastTick())
		}
		return m, tea.Batch(cmds...)

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	if m.editor != nil {
		return m, m.editor.Update(msg, m.runner())
	}
	if tab := m.activeTab(); tab != nil && tab.Editing() {
		var cmd tea.Cmd
		tab.input, cmd = tab.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// reload refreshes the named grid if it has been opened.
func (m Model) reload(name string) tea.Cmd {
	for i, tab := range m.tabs {
		if tab.Controller().Name() != name {
			continue
		}
		if tab.Controller().Loaded() || i == m.active {
			return tab.Load()
		}
	}
	return nil
}

func (m Model) handleRowSaved(msg rowSavedMsg) (tea.Model, tea.Cmd) {
	tab := m.tabs[msg.tab]
	if msg.err == nil {
		tab.SetStatus("Saved.")
		return m, nil
	}

	var verr *grid.ValidationError
	switch {
	case errors.As(msg.err, &verr):
		lines := make([]string, 0, len(verr.Fields()))
		for _, fe := range verr.Fields() {
			lines = append(lines, fe.Field+": "+fe.Err.Error())
		}
		if len(lines) == 0 {
			lines = append(lines, verr.Err.Error())
		}
		alert := NewAlert(styles.IconWarning+" Cannot save "+tab.Title(), lines...)
		m.alert = &alert
	case errors.Is(msg.err, grid.ErrCommitAborted):
		tab.SetStatus("Not saved.")
	default:
		tab.SetStatus("Save failed.")
	}
	return m, tab.Resume(msg.id)
}

func (m Model) handleRowDeleted(msg rowDeletedMsg) (tea.Model, tea.Cmd) {
	tab := m.tabs[msg.tab]
	switch {
	case msg.err != nil:
		tab.SetStatus("Delete failed.")
	case msg.deleted:
		tab.SetStatus("Deleted " + string(msg.id) + ".")
	default:
		tab.SetStatus("Kept " + string(msg.id) + ".")
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch {
	case m.confirm != nil:
		return m.handleConfirmKey(msg)
	case m.alert != nil:
		if s := msg.String(); s == "enter" || s == "esc" {
			m.alert = nil
		}
		return m, nil
	case m.editor != nil:
		cmd := m.editor.Update(msg, m.runner())
		if m.editor.Closed() {
			m.editor = nil
		}
		return m, cmd
	case m.help != nil:
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.help = nil
		}
		return m, nil
	case m.info != nil:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.info.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.info.ScrollDown()
		case key.Matches(msg, m.keys.Schema), msg.String() == "esc":
			m.info = nil
		}
		return m, nil
	}

	tab := m.activeTab()
	if tab != nil && tab.Editing() {
		return m, tab.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help = components.NewHelpDialog("Keys", m.keys.HelpSections(), m.width)
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.Dismiss()
		return m, nil
	case tab == nil:
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)
	case key.Matches(msg, m.keys.Schema):
		m.info = newGridInfo(tab, m.app.Policy, m.identity, m.width, m.height)
		return m, nil
	}

	cmd := tab.Update(msg)
	if sel := tab.Controller().Dialog(); sel.Open && m.editor == nil {
		m.editor = NewDialogEditor(m.active, tab.Spec().Schema, tab.Controller(), *sel.Row)
	}
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "h", "l", "tab":
		m.confirm.modal.ToggleSelection()
		return m, nil
	case "y", "Y":
		return m.answer(true)
	case "n", "N", "esc":
		return m.answer(false)
	case "enter":
		return m.answer(m.confirm.modal.ConfirmSelected())
	}
	return m, nil
}

// answer replies to the pending confirmation and listens for the next.
func (m Model) answer(ok bool) (tea.Model, tea.Cmd) {
	m.confirm.req.reply <- ok
	m.log.Debug().Bool("confirmed", ok).Str("prompt", m.confirm.req.prompt).Msg("confirmation answered")
	m.confirm = nil
	return m, m.bridge.Wait()
}

func (m Model) switchTab(delta int) (tea.Model, tea.Cmd) {
	m.active = (m.active + delta + len(m.tabs)) % len(m.tabs)
	tab := m.tabs[m.active]
	if !tab.Controller().Loaded() && !tab.Controller().Loading() {
		return m, tea.Batch(tab.Load(), m.rememberTab())
	}
	return m, m.rememberTab()
}

// restoreTab returns the index of the tab the user last had open, or 0
// when it is unknown or no longer visible to the role.
func (m Model) restoreTab() int {
	name, ok, err := m.lastTab.Lookup(m.ctx, m.identity.User)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to read last tab")
		return 0
	}
	if !ok {
		return 0
	}
	for i, tab := range m.tabs {
		if tab.Controller().Name() == name {
			return i
		}
	}
	return 0
}

func (m Model) rememberTab() tea.Cmd {
	if m.lastTab == nil {
		return nil
	}
	store, ctx, log := m.lastTab, m.ctx, m.log
	user, name := m.identity.User, m.tabs[m.active].Controller().Name()
	return func() tea.Msg {
		if err := store.SetTTL(ctx, user, name, lastTabTTL); err != nil {
			log.Warn().Err(err).Str("grid", name).Msg("failed to remember tab")
		}
		return nil
	}
}

// handleConfigChanged applies the live-reloadable settings of a changed
// config file and reports the outcome as a toast.
func (m Model) handleConfigChanged(msg configChangedMsg) (tea.Model, tea.Cmd) {
	var next tea.Cmd
	if m.configWatcher != nil {
		next = m.configWatcher.Start()
	}

	if msg.err != nil {
		m.log.Warn().Err(msg.err).Msg("config reload failed")
		m.toasts.Push(notify.Notification{Level: notify.LevelError, Message: "config reload failed: " + msg.err.Error()})
	} else {
		if palette, ok := styles.GetPalette(msg.cfg.TUI.Theme); ok {
			styles.SetTheme(palette)
		}
		m.toasts.SetTTL(msg.cfg.TUI.ToastDuration)
		m.app.Config.TUI = msg.cfg.TUI
		m.toasts.Push(notify.Notification{Level: notify.LevelInfo, Message: "Configuration reloaded"})
	}

	cmds := []tea.Cmd{next}
	if !m.toasts.Ticking() {
		m.toasts.SetTicking(true)
		cmds = append(cmds, scheduleToastTick())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.confirm != nil {
		m.confirm.req.reply <- false
		m.confirm = nil
	}
	m.cancel()
	m.bridge.Close()
	if m.configWatcher != nil {
		_ = m.configWatcher.Close()
	}
	m.app.Bus.PublishTuiStopped(eventbus.TUIStoppedPayload{})
	return m, tea.Quit
}
