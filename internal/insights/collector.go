// Package insights aggregates form telemetry from the event stream: how
// often each form starts, how its runs resolve, and which fields generate
// friction. The collector subscribes to the event bus and serves the
// read side of the insights endpoints.
package insights

import (
	"context"
	"sort"
	"sync"

	"github.com/hearthbot/hearth/internal/event"
)

// Collector consumes lifecycle events and keeps per-form counters. It
// satisfies the event bus handler contract and is safe for concurrent
// reads while events stream in.
type Collector struct {
	mu    sync.RWMutex
	forms map[string]*formStats
}

type formStats struct {
	starts, finishes, cancels, timeouts int

	fields     map[string]*fieldStats
	fieldOrder []string
}

type fieldStats struct {
	answers, rejections int
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{forms: make(map[string]*formStats)}
}

// HandleEvent tallies evt. It never fails; the error return matches the
// bus handler contract.
func (c *Collector) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	if evt.Form == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fs := c.forms[evt.Form]
	if fs == nil {
		fs = &formStats{fields: make(map[string]*fieldStats)}
		c.forms[evt.Form] = fs
	}

	switch evt.Type {
	case event.TypeFormStarted:
		fs.starts++
	case event.TypeFormFinished:
		fs.finishes++
	case event.TypeFormCanceled:
		fs.cancels++
	case event.TypeFormTimedOut:
		fs.timeouts++
	case event.TypeFieldAnswered:
		fs.field(evt.Field).answers++
	case event.TypeFieldRejected:
		fs.field(evt.Field).rejections++
	}
	return nil
}

func (fs *formStats) field(name string) *fieldStats {
	f := fs.fields[name]
	if f == nil {
		f = &fieldStats{}
		fs.fields[name] = f
		fs.fieldOrder = append(fs.fieldOrder, name)
	}
	return f
}

// Form returns a snapshot of one form's telemetry. ok is false when no
// event for that form has been seen.
func (c *Collector) Form(name string) (FormInsights, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fs, ok := c.forms[name]
	if !ok {
		return FormInsights{}, false
	}
	return summarize(name, fs), true
}

// All returns snapshots for every observed form, sorted by name.
func (c *Collector) All() []FormInsights {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.forms))
	for name := range c.forms {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]FormInsights, 0, len(names))
	for _, name := range names {
		out = append(out, summarize(name, c.forms[name]))
	}
	return out
}

func summarize(name string, fs *formStats) FormInsights {
	fi := FormInsights{
		Form:     name,
		Starts:   fs.starts,
		Finishes: fs.finishes,
		Cancels:  fs.cancels,
		Timeouts: fs.timeouts,
	}
	if resolved := fs.finishes + fs.cancels + fs.timeouts; resolved > 0 {
		fi.CompletionRate = float64(fs.finishes) / float64(resolved)
	}
	for _, fname := range fs.fieldOrder {
		f := fs.fields[fname]
		row := FieldInsights{
			Field:      fname,
			Answers:    f.answers,
			Rejections: f.rejections,
		}
		if attempts := f.answers + f.rejections; attempts > 0 {
			row.RejectionRate = float64(f.rejections) / float64(attempts)
		}
		fi.Fields = append(fi.Fields, row)
	}
	fi.Flags = classify(fi)
	return fi
}
