package eventbus

import "sync"

// hookList is a copy-on-read list of callbacks. Callbacks run outside the
// lock so they may register further hooks.
type hookList[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (h *hookList[F]) add(fn F) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *hookList[F]) snapshot() []F {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]F, len(h.fns))
	copy(out, h.fns)
	return out
}

// hooks holds the lifecycle hook state for the EventBus.
type hooks struct {
	onPublish   hookList[func(Event, any)]
	onDrop      hookList[func(Event, any)]
	onSubscribe hookList[func(Event)]
	onPanic     hookList[func(Event, any, any)]
}

// OnPublish registers a hook that fires after an event is enqueued.
func (bus *EventBus) OnPublish(fn func(Event, any)) { bus.hooks.onPublish.add(fn) }

// OnDrop registers a hook that fires when an event is dropped on a full buffer.
func (bus *EventBus) OnDrop(fn func(Event, any)) { bus.hooks.onDrop.add(fn) }

// OnSubscribe registers a hook that fires after a subscriber is registered.
func (bus *EventBus) OnSubscribe(fn func(Event)) { bus.hooks.onSubscribe.add(fn) }

// OnPanic registers a hook that fires when a subscriber panics. A panicking
// hook is swallowed.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) { bus.hooks.onPanic.add(fn) }

// send enqueues an event without blocking. Used by the typed Publish* methods.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		for _, fn := range bus.hooks.onPublish.snapshot() {
			fn(event, payload)
		}
	default:
		for _, fn := range bus.hooks.onDrop.snapshot() {
			fn(event, payload)
		}
	}
}

func (bus *EventBus) runOnSubscribe(event Event) {
	for _, fn := range bus.hooks.onSubscribe.snapshot() {
		fn(event)
	}
}

func (bus *EventBus) runOnPanic(event Event, payload any, recovered any) {
	for _, fn := range bus.hooks.onPanic.snapshot() {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(event, payload, recovered)
		}()
	}
}
