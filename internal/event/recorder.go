// Package event defines the typed domain events emitted around a form's
// life and the observer that publishes them. Field-level telemetry flows
// through the Recorder as the form runs; outcome events are published by
// the session owner once the journal record is written, so consumers
// never see an outcome before it is readable.
package event

import (
	"context"

	"github.com/hearthbot/hearth/forms"
)

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

// Recorder publishes engine lifecycle events to the event bus. It
// implements forms.Observer; hosts attach one per running form.
type Recorder struct {
	bus   Publisher
	scope Scope
}

// NewRecorder creates a Recorder for the given session scope. A nil bus
// yields a recorder that drops everything.
func NewRecorder(bus Publisher, scope Scope) *Recorder {
	return &Recorder{bus: bus, scope: scope}
}

// Observe translates an engine event into a domain event. Resolution
// kinds are skipped here: the journal data they carry only exists after
// the host has settled the record.
func (r *Recorder) Observe(ev forms.Event) {
	if r.bus == nil {
		return
	}
	ctx := context.Background()
	switch ev.Kind {
	case forms.EventStarted:
		r.bus.Publish(ctx, NewFormStarted(r.scope))
	case forms.EventFieldAnswered:
		r.bus.Publish(ctx, NewFieldAnswered(r.scope, fieldName(ev)))
	case forms.EventFieldRejected:
		r.bus.Publish(ctx, NewFieldRejected(r.scope, fieldName(ev), ev.Reason))
	}
}

func fieldName(ev forms.Event) string {
	if ev.Field == nil {
		return ""
	}
	return ev.Field.Name()
}
