package tui

import (
	"context"
	"errors"
	"sync"

	tea "charm.land/bubbletea/v2"
)

var errBridgeClosed = errors.New("console is closing")

type confirmRequest struct {
	prompt string
	reply  chan bool
}

// confirmBridge lets grid controllers running on command goroutines ask the
// UI loop a yes/no question. Confirm blocks until the model answers or ctx
// ends.
type confirmBridge struct {
	requests chan confirmRequest
	done     chan struct{}
	once     sync.Once
}

func newConfirmBridge() *confirmBridge {
	return &confirmBridge{requests: make(chan confirmRequest), done: make(chan struct{})}
}

// Close releases the pending Wait command and refuses later prompts.
func (b *confirmBridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *confirmBridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := confirmRequest{prompt: prompt, reply: make(chan bool, 1)}

	select {
	case b.requests <- req:
	case <-b.done:
		return false, errBridgeClosed
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Wait returns a command that delivers the next confirmation request, or
// nil once the bridge is closed.
func (b *confirmBridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-b.requests:
			return confirmRequestMsg{req: req}
		case <-b.done:
			return nil
		}
	}
}
