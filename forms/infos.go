package forms

import (
	"context"
	"fmt"
	"strings"
)

// InfoEntry is one collected key/value pair from an Infos field.
type InfoEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Infos bundles a group of sub-fields behind a single entry. Asking it runs
// the sub-fields as a nested form on the same session; finishing the nested
// form stores the answered sub-fields as InfoEntry pairs.
type Infos struct {
	Base

	subs []Field
}

// NewInfos builds an infos field over the given sub-fields.
func NewInfos(name, label string, subs []Field, opts ...FieldOption) *Infos {
	return &Infos{Base: newBase(name, label, opts), subs: subs}
}

func (i *Infos) Ask(ctx context.Context, f *Form) (AskStatus, error) {
	// Carry current entries into the sub-fields so re-opening shows them.
	if entries, ok := i.value.([]InfoEntry); ok {
		byKey := make(map[string]any, len(entries))
		for _, e := range entries {
			byKey[e.Key] = e.Value
		}
		for _, sub := range i.subs {
			if v, ok := byKey[sub.Name()]; ok {
				sub.base().prefill(v)
			}
		}
	}

	child, err := New(f.name+"."+i.name, i.label, i.subs,
		WithTranslator(f.tr),
		WithLookup(f.lookup),
		WithObserver(f.observer),
	)
	if err != nil {
		return AskRefresh, err
	}

	st, err := f.sess.Drive(ctx, child)
	if err != nil {
		return AskRefresh, err
	}
	if st != StatusFinished {
		if nerr := f.notify(ctx, NoticeInfo, f.tr.Sprintf("The field **%s** has not been updated.", i.label)); nerr != nil {
			return AskRefresh, nerr
		}
		return AskRefresh, nil
	}

	var entries []InfoEntry
	for _, sub := range child.Fields() {
		if sub.Value() != nil {
			entries = append(entries, InfoEntry{Key: sub.Name(), Value: sub.Value()})
		}
	}

	f.mu.Lock()
	i.value = entries
	f.mu.Unlock()

	f.observer.Observe(Event{Kind: EventFieldAnswered, Form: f, Field: i})
	if nerr := f.notify(ctx, NoticeSuccess, f.tr.Sprintf("The field **%s** has been updated.", i.label)); nerr != nil {
		return AskRefresh, nerr
	}
	return AskRefresh, nil
}

func (i *Infos) Display(tr Translator) string {
	entries, _ := i.value.([]InfoEntry)
	if len(entries) == 0 {
		// Before any answer, list the required sub-fields still waiting.
		var lines []string
		for _, sub := range i.subs {
			if sub.Required() && sub.Value() == nil {
				lines = append(lines, tr.Sprintf("**%s:** %s", sub.Label(), tr.Sprintf("*Unanswered*")))
			}
		}
		if len(lines) == 0 {
			return tr.Sprintf("*Unanswered*")
		}
		return strings.Join(lines, "\n")
	}

	labels := make(map[string]string, len(i.subs))
	for _, sub := range i.subs {
		labels[sub.Name()] = sub.Label()
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		label := labels[e.Key]
		if label == "" {
			label = e.Key
		}
		lines = append(lines, tr.Sprintf("**%s:** %s", label, fmt.Sprintf("%v", e.Value)))
	}
	return strings.Join(lines, "\n")
}
