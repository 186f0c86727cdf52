package tui

import (
	"fmt"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/tally/internal/core/notify"
)

// NotificationBuffer hands notifications published on other goroutines to
// the UI loop. Pushes coalesce into a single pending drain signal.
type NotificationBuffer struct {
	mu            sync.Mutex
	notifications []notify.Notification
	signal        chan struct{}
}

func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{
		notifications: make([]notify.Notification, 0),
		signal:        make(chan struct{}, 1),
	}
}

// Push appends a notification and emits a non-blocking drain signal.
func (b *NotificationBuffer) Push(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	b.notifications = append(b.notifications, n)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns all buffered notifications and clears the buffer. Repeats
// of the same level and message collapse into one entry, at the position of
// the first, carrying the latest timestamp and an "(xN)" suffix.
func (b *NotificationBuffer) Drain() []notify.Notification {
	b.mu.Lock()
	pending := b.notifications
	b.notifications = make([]notify.Notification, 0, len(pending))
	b.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	type key struct {
		level   notify.Level
		message string
	}
	index := make(map[key]int, len(pending))
	counts := make([]int, 0, len(pending))
	out := make([]notify.Notification, 0, len(pending))

	for _, n := range pending {
		k := key{n.Level, n.Message}
		if i, ok := index[k]; ok {
			counts[i]++
			out[i].CreatedAt = n.CreatedAt
			out[i].ID = n.ID
			continue
		}
		index[k] = len(out)
		counts = append(counts, 1)
		out = append(out, n)
	}

	for i, c := range counts {
		if c > 1 {
			out[i].Message = fmt.Sprintf("%s (x%d)", out[i].Message, c)
		}
	}
	return out
}

// WaitForSignal blocks until there are notifications ready to drain.
func (b *NotificationBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainNotificationsMsg{}
	}
}
