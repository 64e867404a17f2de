package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Event types emitted around a form's life.
const (
	TypeFormStarted   = "form_started"
	TypeFieldAnswered = "field_answered"
	TypeFieldRejected = "field_rejected"
	TypeFormFinished  = "form_finished"
	TypeFormCanceled  = "form_canceled"
	TypeFormTimedOut  = "form_timed_out"
)

// DomainEvent carries the canonical shape of every lifecycle event.
type DomainEvent struct {
	ID         string
	Type       string
	OccurredAt time.Time
	Form       string
	Session    string
	Actor      string
	Cluster    string
	Field      string // set for field-scoped events
	Summary    string
	Polarity   string // "positive", "negative", "neutral"
	Detail     json.RawMessage
}

// Scope identifies the running session an event belongs to. It is embedded
// in every event payload.
type Scope struct {
	Form    string `json:"form"`
	Session string `json:"session"`
	Actor   string `json:"actor"`
	Cluster string `json:"cluster,omitempty"`
}

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := sonic.Marshal(v)
	return b
}

// FieldPayload carries event-specific data for field-scoped events.
type FieldPayload struct {
	Scope
	Field  string `json:"field"`
	Reason string `json:"reason,omitempty"`
}

// OutcomePayload carries the journal data of a resolved form.
type OutcomePayload struct {
	Scope
	RecordID   string          `json:"record_id,omitempty"`
	Status     string          `json:"status"`
	Answered   int             `json:"answered"`
	FieldCount int             `json:"field_count"`
	StartedAt  time.Time       `json:"started_at"`
	ResolvedAt time.Time       `json:"resolved_at"`
	Values     json.RawMessage `json:"values,omitempty"`
	Patch      json.RawMessage `json:"patch,omitempty"`
}

// NewFormStarted records a form beginning its run.
func NewFormStarted(s Scope) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		Type:       TypeFormStarted,
		OccurredAt: time.Now(),
		Form:       s.Form,
		Session:    s.Session,
		Actor:      s.Actor,
		Cluster:    s.Cluster,
		Summary:    fmt.Sprintf("Form %s started by %s", s.Form, s.Actor),
		Polarity:   "neutral",
		Detail:     mustJSON(FieldPayload{Scope: s}),
	}
}

// NewFieldAnswered records a field accepting a value.
func NewFieldAnswered(s Scope, field string) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		Type:       TypeFieldAnswered,
		OccurredAt: time.Now(),
		Form:       s.Form,
		Session:    s.Session,
		Actor:      s.Actor,
		Cluster:    s.Cluster,
		Field:      field,
		Summary:    fmt.Sprintf("Field %s answered on form %s", field, s.Form),
		Polarity:   "positive",
		Detail:     mustJSON(FieldPayload{Scope: s, Field: field}),
	}
}

// NewFieldRejected records a field refusing a value. Reason carries the
// rendered validation message shown to the actor.
func NewFieldRejected(s Scope, field, reason string) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		Type:       TypeFieldRejected,
		OccurredAt: time.Now(),
		Form:       s.Form,
		Session:    s.Session,
		Actor:      s.Actor,
		Cluster:    s.Cluster,
		Field:      field,
		Summary:    fmt.Sprintf("Field %s rejected a value on form %s", field, s.Form),
		Polarity:   "negative",
		Detail:     mustJSON(FieldPayload{Scope: s, Field: field, Reason: reason}),
	}
}

// NewFormFinished records a completed submission.
func NewFormFinished(p OutcomePayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		Type:       TypeFormFinished,
		OccurredAt: time.Now(),
		Form:       p.Form,
		Session:    p.Session,
		Actor:      p.Actor,
		Cluster:    p.Cluster,
		Summary:    fmt.Sprintf("Form %s finished by %s with %d of %d fields answered", p.Form, p.Actor, p.Answered, p.FieldCount),
		Polarity:   "positive",
		Detail:     mustJSON(p),
	}
}

// NewFormCanceled records a submission abandoned by the actor.
func NewFormCanceled(p OutcomePayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		Type:       TypeFormCanceled,
		OccurredAt: time.Now(),
		Form:       p.Form,
		Session:    p.Session,
		Actor:      p.Actor,
		Cluster:    p.Cluster,
		Summary:    fmt.Sprintf("Form %s canceled by %s", p.Form, p.Actor),
		Polarity:   "negative",
		Detail:     mustJSON(p),
	}
}

// NewFormTimedOut records a submission abandoned by the idle sweeper.
func NewFormTimedOut(p OutcomePayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		Type:       TypeFormTimedOut,
		OccurredAt: time.Now(),
		Form:       p.Form,
		Session:    p.Session,
		Actor:      p.Actor,
		Cluster:    p.Cluster,
		Summary:    fmt.Sprintf("Form %s timed out for %s", p.Form, p.Actor),
		Polarity:   "negative",
		Detail:     mustJSON(p),
	}
}
