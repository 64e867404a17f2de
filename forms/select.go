package forms

import (
	"context"
	"fmt"
	"strings"
)

// SourceFunc resolves a select's choices at ask time, for fields whose
// options come from a catalog rather than the form definition.
type SourceFunc func(ctx context.Context, f *Form) ([]*Choice, error)

// Select asks the user to pick one or more values from a set of choices.
// The selection count is enforced with the length validators, so too few or
// too many picks report like a length violation. With min and max both 1
// the stored value is the picked value itself, otherwise a slice.
type Select struct {
	Base

	description string
	static      []*Choice
	source      SourceFunc
	minValues   int
	maxValues   int

	// lastSet keeps the most recent option set for display lookups.
	lastSet []*Choice
}

// NewSelect builds a select over a fixed choice list.
func NewSelect(name, label string, choices []*Choice, opts ...FieldOption) *Select {
	return &Select{
		Base:      newBase(name, label, opts),
		static:    choices,
		lastSet:   choices,
		minValues: 1,
		maxValues: 1,
	}
}

// NewDynamicSelect builds a select whose choices are resolved by source on
// every ask.
func NewDynamicSelect(name, label string, source SourceFunc, opts ...FieldOption) *Select {
	return &Select{
		Base:      newBase(name, label, opts),
		source:    source,
		minValues: 1,
		maxValues: 1,
	}
}

// Range bounds how many values may be picked. A max of -1 means all
// available choices.
func (s *Select) Range(min, max int) *Select {
	s.minValues, s.maxValues = min, max
	if s.maxValues == -1 && len(s.static) > 0 {
		s.maxValues = len(s.static)
	}
	return s
}

// Describe replaces the default prompt description.
func (s *Select) Describe(d string) *Select {
	s.description = d
	return s
}

func (s *Select) check() error {
	if len(s.static) > 100 {
		return fmt.Errorf("field %q: %w", s.name, ErrTooManyOptions)
	}
	return nil
}

func (s *Select) Ask(ctx context.Context, f *Form) (AskStatus, error) {
	choices := s.static
	if s.source != nil {
		var err error
		choices, err = s.source(ctx, f)
		if err != nil {
			if nerr := f.notify(ctx, NoticeError, err.Error()); nerr != nil {
				return AskRefresh, nerr
			}
			return AskRefresh, nil
		}
	}
	if len(choices) == 0 {
		if nerr := f.notify(ctx, NoticeInfo, f.tr.Sprintf("No choices available.")); nerr != nil {
			return AskRefresh, nerr
		}
		return AskRefresh, nil
	}
	if len(choices) > 100 {
		if nerr := f.notify(ctx, NoticeError, f.tr.Sprintf("Too many choices")); nerr != nil {
			return AskRefresh, nerr
		}
		return AskRefresh, nil
	}
	s.lastSet = choices

	maxValues := s.maxValues
	if maxValues == -1 {
		maxValues = len(choices)
	}

	set, err := NewOptionSet(choices)
	if err != nil {
		return AskRefresh, err
	}
	set.MarkSelected(s.valueList())

	desc := s.description
	if desc == "" {
		desc = f.tr.Sprintf("Select between %d and %d values.", s.minValues, maxValues)
	}

	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptSelect,
		Title:       desc,
		Label:       s.label,
		Placeholder: f.tr.Sprintf("Select a value"),
		Options:     promptOptions(choices),
		MinValues:   s.minValues,
		MaxValues:   maxValues,
	})
	if err != nil {
		return AskRefresh, err
	}
	if reply.Dismissed {
		return AskRefresh, nil
	}

	picked := set.Values(reply.Tokens)
	for _, count := range []Validator{MinLength(s.minValues), MaxLength(maxValues)} {
		if verr := count(picked); verr != nil {
			if nerr := f.reject(ctx, s, verr); nerr != nil {
				return AskRefresh, nerr
			}
			return AskRefresh, nil
		}
	}

	var value any = picked
	if s.minValues == 1 && maxValues == 1 && len(picked) == 1 {
		value = picked[0]
	}
	if err := s.store(ctx, f, value); err != nil {
		return AskRefresh, err
	}
	return AskRefresh, nil
}

// store assigns the picked value and reports success. The field's own
// validators do not run here: the pick came from the offered choices, only
// the count needed checking.
func (s *Select) store(ctx context.Context, f *Form, value any) error {
	f.mu.Lock()
	s.value = value
	f.mu.Unlock()

	f.observer.Observe(Event{Kind: EventFieldAnswered, Form: f, Field: s})
	return f.notify(ctx, NoticeSuccess, f.tr.Sprintf("Successfully set value to: %s", s.Display(f.tr)))
}

func (s *Select) valueList() []any {
	switch t := s.value.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

func (s *Select) Display(tr Translator) string {
	if s.value == nil {
		return tr.Sprintf("*Unanswered*")
	}
	values := s.valueList()
	labels := make([]string, 0, len(values))
	for _, v := range values {
		labels = append(labels, s.displayOne(v))
	}
	return strings.Join(labels, ", ")
}

// displayOne renders a stored value by its choice label when the choice is
// still known.
func (s *Select) displayOne(v any) string {
	for _, c := range s.lastSet {
		if looseEqual(c.Value, v) {
			return c.Label
		}
	}
	return fmt.Sprintf("%v", v)
}
