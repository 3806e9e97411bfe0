package sim

// VTimeInSec is a point in simulated time, in seconds.
type VTimeInSec float64

// An Event is something that happens at a given simulated time.
type Event interface {
	Time() VTimeInSec

	// Handler returns the handler that processes the event.
	Handler() Handler

	// IsSecondary tells if the event runs after all the primary events of the
	// same time.
	IsSecondary() bool
}

// EventBase holds the fields that all events share.
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates a primary EventBase.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns the time that the event happens.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler processes events. A handler should only schedule events for
// itself, so that an event only changes the state of its own handler.
type Handler interface {
	Handle(e Event) error
}
