package domain

// Event is an immutable record of a state change inside an aggregate.
// Events are collected on the aggregate instance while a mutation runs and
// dispatched by the owning use case only after the new state is committed.
type Event interface {
	EventType() string
}

// EventRecorder is embedded by aggregate roots to collect domain events.
// It is not safe for concurrent use; an aggregate instance belongs to a
// single request.
type EventRecorder struct {
	events []Event
}

func (r *EventRecorder) Record(e Event) {
	r.events = append(r.events, e)
}

// Events returns the events recorded so far, in order.
func (r *EventRecorder) Events() []Event {
	return r.events
}

// ClearEvents drops recorded events. Called after a successful dispatch so a
// reused instance never re-emits.
func (r *EventRecorder) ClearEvents() {
	r.events = nil
}
