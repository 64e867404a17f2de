// Package journal persists the outcome of resolved forms. A record is
// written once, by the host that settled the form, and queried read-only
// by the REST surface afterwards.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound reports a record ID with no stored submission.
var ErrNotFound = errors.New("journal: record not found")

// Statuses a stored record can carry. Unlike the engine, the journal
// distinguishes sweeper timeouts from actor cancels.
const (
	StatusFinished = "finished"
	StatusCanceled = "canceled"
	StatusTimedOut = "timed_out"
)

// Record is one submitted or abandoned form.
type Record struct {
	ID         string          `json:"id"`
	Form       string          `json:"form"`
	Session    string          `json:"session"`
	Actor      string          `json:"actor"`
	Cluster    string          `json:"cluster,omitempty"`
	Status     string          `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	ResolvedAt time.Time       `json:"resolved_at"`
	FieldCount int             `json:"field_count"`
	Answered   int             `json:"answered"`
	Values     json.RawMessage `json:"values,omitempty"`
	Patch      json.RawMessage `json:"patch,omitempty"`
}

// Query filters submission listings. Zero-value fields match everything.
type Query struct {
	Form   string
	Actor  string
	Status string
	Limit  int // default 100, capped at 500
	Offset int
}

// Store reads and writes submission records.
type Store interface {
	// Save writes one record. Saving an ID that already exists is a no-op.
	Save(ctx context.Context, rec Record) error

	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// List returns matching records newest first, plus the total match
	// count before pagination.
	List(ctx context.Context, q Query) (records []Record, total int, err error)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 500:
		return 500
	default:
		return limit
	}
}
