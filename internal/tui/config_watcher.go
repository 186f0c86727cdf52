package tui

import (
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/colonyops/tally/internal/core/config"
)

const configDebounce = 150 * time.Millisecond

// configChangedMsg carries a reloaded configuration, or the reason the
// reload failed.
type configChangedMsg struct {
	cfg *config.Config
	err error
}

// ConfigWatcher reloads the config file when it changes on disk. Only
// presentation settings are applied live; backend and roles need a restart.
type ConfigWatcher struct {
	watcher     *fsnotify.Watcher
	path        string
	dataDir     string
	debounceDur time.Duration
}

// NewConfigWatcher watches the directory holding path, so editors that
// save by rename are still seen.
func NewConfigWatcher(path, dataDir string) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return &ConfigWatcher{
		watcher:     watcher,
		path:        filepath.Clean(path),
		dataDir:     dataDir,
		debounceDur: configDebounce,
	}, nil
}

// Start returns a command that blocks until the config file changes, then
// reloads it. Re-issue it after each configChangedMsg.
func (w *ConfigWatcher) Start() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if !w.relevant(event) {
					continue
				}

				// Saves often arrive as several events; wait for them to settle.
				time.Sleep(w.debounceDur)
				w.drain()

				cfg, err := config.Load(w.path, w.dataDir)
				return configChangedMsg{cfg: cfg, err: err}

			case _, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (w *ConfigWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *ConfigWatcher) drain() {
	for {
		select {
		case <-w.watcher.Events:
		default:
			return
		}
	}
}

// Close stops watching.
func (w *ConfigWatcher) Close() error {
	return w.watcher.Close()
}
