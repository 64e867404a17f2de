package forms

import "context"

// AskStatus tells the form how to proceed after a field interaction.
type AskStatus int

const (
	// AskRefresh re-renders the view and lets the form auto-advance.
	AskRefresh AskStatus = iota
	// AskSilent re-renders without auto-advancing, for fields that are in
	// the middle of a longer editing exchange.
	AskSilent
)

// Field is one entry in a form. The variant set is closed: every
// implementation lives in this package and embeds Base, so the form can
// reach shared state without type switches.
type Field interface {
	// Name is the key the field's value is stored under.
	Name() string
	// Label is the heading shown to the user.
	Label() string
	// Required reports whether the form cannot finish while this field is
	// visible and unanswered.
	Required() bool
	// Value returns the current value, nil while unanswered.
	Value() any
	// MustAppear evaluates the field's appearance conditions against the
	// given snapshot of form values.
	MustAppear(s Snapshot) bool
	// Done reports whether the field no longer blocks completion.
	Done(s Snapshot) bool
	// Display renders the current value for the form view.
	Display(tr Translator) string
	// Ask runs the field's input exchange against the form's session.
	Ask(ctx context.Context, f *Form) (AskStatus, error)

	base() *Base
	check() error
}

// FieldOption configures the shared part of a field.
type FieldOption func(*Base)

// WithRequired marks the field required.
func WithRequired() FieldOption {
	return func(b *Base) { b.required = true }
}

// WithValidators appends validators, run in order on every submission.
func WithValidators(v ...Validator) FieldOption {
	return func(b *Base) { b.validators = append(b.validators, v...) }
}

// WithAppear adds appearance conditions. The field is shown only while all
// of them hold.
func WithAppear(c ...Condition) FieldOption {
	return func(b *Base) { b.appear = append(b.appear, c...) }
}

// WithDefault sets an initial value without running validators.
func WithDefault(v any) FieldOption {
	return func(b *Base) { b.value = v }
}

// Base carries the state every field variant shares.
type Base struct {
	name       string
	label      string
	required   bool
	validators []Validator
	appear     []Condition
	value      any
	current    bool
}

func newBase(name, label string, opts []FieldOption) Base {
	b := Base{name: name, label: label}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *Base) Name() string   { return b.name }
func (b *Base) Label() string  { return b.label }
func (b *Base) Required() bool { return b.required }
func (b *Base) Value() any     { return b.value }

// MustAppear reports whether every appearance condition holds. A field with
// no conditions always appears.
func (b *Base) MustAppear(s Snapshot) bool {
	for _, cond := range b.appear {
		if !cond(s) {
			return false
		}
	}
	return true
}

// Done reports whether the field blocks completion. Hidden fields never do,
// even when required and unanswered.
func (b *Base) Done(s Snapshot) bool {
	if !b.MustAppear(s) {
		return true
	}
	if b.required {
		return b.value != nil
	}
	return true
}

func (b *Base) answered() bool { return b.value != nil }

// validate runs the field's validators in order and returns the first
// failure.
func (b *Base) validate(v any) error {
	for _, check := range b.validators {
		if err := check(v); err != nil {
			return err
		}
	}
	return nil
}

// prefill stores a value without validation or notification.
func (b *Base) prefill(v any) { b.value = v }

func (b *Base) base() *Base { return b }

// check validates construction-time constraints. Variants with their own
// constraints shadow it.
func (b *Base) check() error { return nil }
