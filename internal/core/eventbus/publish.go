package eventbus

// Typed Publish/Subscribe pairs. Subscribers run on the bus goroutine.

func (bus *EventBus) PublishGridInvalidated(p GridInvalidatedPayload) {
	bus.send(EventGridInvalidated, p)
}

func (bus *EventBus) SubscribeGridInvalidated(fn func(GridInvalidatedPayload)) {
	bus.subscribe(EventGridInvalidated, func(p any) { fn(p.(GridInvalidatedPayload)) })
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(p any) { fn(p.(NotificationPublishedPayload)) })
}

func (bus *EventBus) PublishRowCreated(p RowCreatedPayload) {
	bus.send(EventRowCreated, p)
}

func (bus *EventBus) SubscribeRowCreated(fn func(RowCreatedPayload)) {
	bus.subscribe(EventRowCreated, func(p any) { fn(p.(RowCreatedPayload)) })
}

func (bus *EventBus) PublishRowDeleted(p RowDeletedPayload) {
	bus.send(EventRowDeleted, p)
}

func (bus *EventBus) SubscribeRowDeleted(fn func(RowDeletedPayload)) {
	bus.subscribe(EventRowDeleted, func(p any) { fn(p.(RowDeletedPayload)) })
}

func (bus *EventBus) PublishRowUpdated(p RowUpdatedPayload) {
	bus.send(EventRowUpdated, p)
}

func (bus *EventBus) SubscribeRowUpdated(fn func(RowUpdatedPayload)) {
	bus.subscribe(EventRowUpdated, func(p any) { fn(p.(RowUpdatedPayload)) })
}

func (bus *EventBus) PublishTuiStarted(p TUIStartedPayload) {
	bus.send(EventTuiStarted, p)
}

func (bus *EventBus) SubscribeTuiStarted(fn func(TUIStartedPayload)) {
	bus.subscribe(EventTuiStarted, func(p any) { fn(p.(TUIStartedPayload)) })
}

func (bus *EventBus) PublishTuiStopped(p TUIStoppedPayload) {
	bus.send(EventTuiStopped, p)
}

func (bus *EventBus) SubscribeTuiStopped(fn func(TUIStoppedPayload)) {
	bus.subscribe(EventTuiStopped, func(p any) { fn(p.(TUIStoppedPayload)) })
}

// Invalidate publishes grid.invalidated, making the bus a grid trigger.
func (bus *EventBus) Invalidate(grid string) {
	bus.PublishGridInvalidated(GridInvalidatedPayload{Grid: grid})
}
