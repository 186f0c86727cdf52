package eventbus

import (
	"fmt"

	"github.com/colonyops/tally/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings. Updates are frequent
// and already visible in the grid, so they produce no notification.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeRowCreated(func(p RowCreatedPayload) {
		r.notifyf(notify.LevelInfo, "%s %s created", singular(p.Entity), p.ID)
	})

	r.bus.SubscribeRowDeleted(func(p RowDeletedPayload) {
		if p.User == "" {
			r.notifyf(notify.LevelInfo, "%s %s deleted", singular(p.Entity), p.ID)
			return
		}
		r.notifyf(notify.LevelInfo, "%s %s deleted by %s", singular(p.Entity), p.ID, p.User)
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

func singular(entity string) string {
	switch {
	case entity == "salespeople":
		return "salesperson"
	case len(entity) > 1 && entity[len(entity)-1] == 's':
		return entity[:len(entity)-1]
	default:
		return entity
	}
}
