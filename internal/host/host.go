// Package host carries the pieces the interactive hosts share: turning a
// resolved form run into a journal record and the outcome event announcing
// it. The record is written before the event goes out, so anyone holding
// the record ID from an event or a result frame finds it stored.
package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/internal/event"
	"github.com/hearthbot/hearth/internal/journal"
)

// ErrUnresolved is returned by Conclude for a form that is still running.
var ErrUnresolved = errors.New("host: form not resolved")

// Run describes one form run from the hosting side: who drives it, when it
// started, and the values it was seeded with in edit mode.
type Run struct {
	Scope     event.Scope
	Prefill   map[string]any
	StartedAt time.Time
}

// Conclude journals a resolved form and publishes its outcome event. The
// stored status distinguishes sweeper timeouts from actor cancels. A save
// failure suppresses the event so consumers never learn an ID that was not
// written; a nil bus only skips the publish.
func Conclude(ctx context.Context, f *forms.Form, run Run, store journal.Store, bus event.Publisher) (*journal.Record, error) {
	st := f.Status()
	if !st.Resolved() {
		return nil, ErrUnresolved
	}

	status := journal.StatusCanceled
	switch {
	case st == forms.StatusFinished:
		status = journal.StatusFinished
	case f.TimedOut():
		status = journal.StatusTimedOut
	}

	values := f.Values()
	answered := 0
	for _, v := range values {
		if v != nil {
			answered++
		}
	}

	scope := run.Scope
	scope.Form = f.Name()

	rec := journal.Record{
		ID:         uuid.New().String(),
		Form:       scope.Form,
		Session:    scope.Session,
		Actor:      scope.Actor,
		Cluster:    scope.Cluster,
		Status:     status,
		StartedAt:  run.StartedAt,
		ResolvedAt: time.Now(),
		FieldCount: len(values),
		Answered:   answered,
	}

	encoded, err := journal.EncodeValues(values)
	if err != nil {
		return nil, err
	}
	rec.Values = encoded

	if status == journal.StatusFinished && len(run.Prefill) > 0 {
		patch, err := journal.MergePatch(run.Prefill, values)
		if err != nil {
			return nil, err
		}
		rec.Patch = patch
	}

	if err := store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("host: journaling %s run %s: %w", rec.Form, rec.ID, err)
	}

	if bus != nil {
		payload := event.OutcomePayload{
			Scope:      scope,
			RecordID:   rec.ID,
			Status:     status,
			Answered:   answered,
			FieldCount: rec.FieldCount,
			StartedAt:  rec.StartedAt,
			ResolvedAt: rec.ResolvedAt,
			Values:     rec.Values,
			Patch:      rec.Patch,
		}
		switch status {
		case journal.StatusFinished:
			bus.Publish(ctx, event.NewFormFinished(payload))
		case journal.StatusTimedOut:
			bus.Publish(ctx, event.NewFormTimedOut(payload))
		default:
			bus.Publish(ctx, event.NewFormCanceled(payload))
		}
	}
	return &rec, nil
}
