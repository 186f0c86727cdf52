// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within tally.
package eventbus

import "github.com/colonyops/tally/internal/core/notify"

// Event names a bus event.
type Event string

const (
	// Keep list sorted A-Z
	EventGridInvalidated       Event = "grid.invalidated"
	EventNotificationPublished Event = "notification.published"
	EventRowCreated            Event = "row.created"
	EventRowDeleted            Event = "row.deleted"
	EventRowUpdated            Event = "row.updated"
	EventTuiStarted            Event = "tui.started"
	EventTuiStopped            Event = "tui.stopped"
)

// GridInvalidatedPayload asks the owner of a grid to reload it.
type GridInvalidatedPayload struct {
	Grid string
}

// RowCreatedPayload is emitted after a record is created on the backend.
type RowCreatedPayload struct {
	Entity string
	ID     string
	User   string
}

// RowUpdatedPayload is emitted after a record is updated on the backend.
type RowUpdatedPayload struct {
	Entity string
	ID     string
	Fields []string
	User   string
}

// RowDeletedPayload is emitted after a record is deleted on the backend.
type RowDeletedPayload struct {
	Entity string
	ID     string
	User   string
	Role   string
}

// NotificationPublishedPayload carries a user-facing message.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

// TUIStartedPayload is emitted when the TUI starts.
type TUIStartedPayload struct{}

// TUIStoppedPayload is emitted when the TUI stops.
type TUIStoppedPayload struct{}
