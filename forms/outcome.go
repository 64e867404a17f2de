package forms

import (
	"context"
	"sync"
)

// Status is the resolution state of a form.
type Status string

const (
	StatusPending  Status = "pending"
	StatusFinished Status = "finished"
	StatusCanceled Status = "canceled"
)

// Resolved reports whether the status is terminal.
func (s Status) Resolved() bool { return s == StatusFinished || s == StatusCanceled }

// outcome is a write-once resolution cell. The first settle wins and closes
// the done channel; later settles are no-ops. Waiters block on done.
type outcome struct {
	once     sync.Once
	done     chan struct{}
	status   Status
	timedOut bool
}

func newOutcome() *outcome {
	return &outcome{done: make(chan struct{}), status: StatusPending}
}

// settle records the terminal status. It reports whether this call won the
// race; losers change nothing.
func (o *outcome) settle(st Status, timedOut bool) bool {
	won := false
	o.once.Do(func() {
		o.status = st
		o.timedOut = timedOut
		close(o.done)
		won = true
	})
	return won
}

func (o *outcome) resolved() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// get returns the current status, StatusPending until settled.
func (o *outcome) get() Status {
	if !o.resolved() {
		return StatusPending
	}
	return o.status
}

// wait blocks until the outcome settles or ctx is done.
func (o *outcome) wait(ctx context.Context) (Status, error) {
	select {
	case <-o.done:
		return o.status, nil
	case <-ctx.Done():
		return StatusPending, ctx.Err()
	}
}
