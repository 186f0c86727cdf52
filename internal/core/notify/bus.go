package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(Notification)

// Bus is a synchronous in-process notification bus. It persists each
// notification to a Store and then calls every subscriber inline on the
// publishing goroutine. Subscribers that touch UI state must hand the
// notification over to the UI loop themselves.
type Bus struct {
	store       Store
	subscribers []Subscriber
	mu          sync.Mutex
}

// NewBus creates a notification bus backed by the given store.
// If store is nil, notifications are dispatched to subscribers but not persisted.
func NewBus(store Store) *Bus {
	return &Bus{
		store: store,
	}
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish dispatches a notification to all subscribers and persists it to the store.
func (b *Bus) Publish(n Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	// Persist first so the notification has an ID for subscribers.
	if b.store != nil {
		id, err := b.store.Save(context.Background(), n)
		if err != nil {
			log.Error().Err(err).Str("message", n.Message).Msg("failed to persist notification")
		} else {
			n.ID = id
		}
	}

	b.mu.Lock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// Errorf publishes an error-level notification.
func (b *Bus) Errorf(format string, args ...any) {
	b.Publish(Notification{Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

// Warnf publishes a warning-level notification.
func (b *Bus) Warnf(format string, args ...any) {
	b.Publish(Notification{Level: LevelWarning, Message: fmt.Sprintf(format, args...)})
}

// Infof publishes an info-level notification.
func (b *Bus) Infof(format string, args ...any) {
	b.Publish(Notification{Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

// History returns all persisted notifications (newest first).
// Returns nil if no store is configured.
func (b *Bus) History(ctx context.Context) ([]Notification, error) {
	if b.store == nil {
		return nil, nil
	}
	return b.store.List(ctx)
}

// Prune deletes persisted notifications older than maxAge.
func (b *Bus) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	if b.store == nil || maxAge <= 0 {
		return 0, nil
	}
	return b.store.DeleteBefore(ctx, time.Now().Add(-maxAge))
}

// Clear deletes all persisted notifications.
func (b *Bus) Clear(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	return b.store.Clear(ctx)
}
