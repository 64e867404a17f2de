package forms

import "fmt"

// EventKind identifies an observable moment in a form's life.
type EventKind int

const (
	EventStarted EventKind = iota
	EventFieldAnswered
	EventFieldRejected
	EventFinished
	EventCanceled
	EventTimedOut
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventFieldAnswered:
		return "field_answered"
	case EventFieldRejected:
		return "field_rejected"
	case EventFinished:
		return "finished"
	case EventCanceled:
		return "canceled"
	case EventTimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("eventkind(%d)", int(k))
	}
}

// Event is one lifecycle notification emitted by a running form.
type Event struct {
	Kind EventKind

	// Form is the emitting form.
	Form *Form

	// Field is set for field-scoped events.
	Field Field

	// Reason carries the rendered rejection message for EventFieldRejected.
	Reason string
}

// Observer receives form lifecycle events. Observers run synchronously on
// the form's goroutine and must not call back into the form.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

// multiObserver fans one event out to several observers in order.
type multiObserver []Observer

func (m multiObserver) Observe(ev Event) {
	for _, o := range m {
		o.Observe(ev)
	}
}

// nopObserver drops every event.
type nopObserver struct{}

func (nopObserver) Observe(Event) {}
