package ecs

// EventType names a lifecycle event.
type EventType string

// Event is a bus payload. Data is owned by the publisher.
type Event struct {
	Type EventType
	Data any
}

// Handler receives published events.
type Handler func(Event)

// Bus dispatches events synchronously: Publish returns after every handler
// for the event type has run, in subscription order.
type Bus struct {
	handlers map[EventType][]Handler
}

// Subscribe registers h for events of type t.
func (b *Bus) Subscribe(t EventType, h Handler) {
	if b == nil || h == nil {
		return
	}
	if b.handlers == nil {
		b.handlers = map[EventType][]Handler{}
	}
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish delivers evt to the current subscribers of its type. Handlers
// subscribed while a publish is in progress only see later events.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	hs := b.handlers[evt.Type]
	if len(hs) == 0 {
		return
	}
	hs = append([]Handler(nil), hs...)
	for _, h := range hs {
		h(evt)
	}
}
