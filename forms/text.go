package forms

import (
	"context"
	"fmt"
)

// Text asks for free text through a modal prompt.
type Text struct {
	Base

	minLen int
	maxLen int
}

// NewText builds a text field. The prompt hints at a minimum of 3
// characters unless Bounds overrides it; validators are what actually
// enforce limits.
func NewText(name, label string, opts ...FieldOption) *Text {
	return &Text{Base: newBase(name, label, opts), minLen: 3}
}

// Bounds sets the prompt's length hints. Zero max means unbounded.
func (t *Text) Bounds(min, max int) *Text {
	t.minLen, t.maxLen = min, max
	return t
}

func (t *Text) Ask(ctx context.Context, f *Form) (AskStatus, error) {
	req := PromptRequest{
		Kind:        PromptText,
		Title:       f.tr.Sprintf("Enter a value"),
		Label:       t.label,
		Placeholder: f.tr.Sprintf("Enter a value"),
		MinLength:   t.minLen,
		MaxLength:   t.maxLen,
	}
	if t.value != nil {
		req.Default = fmt.Sprintf("%v", t.value)
	}

	reply, err := f.sess.Prompt(ctx, req)
	if err != nil {
		return AskRefresh, err
	}
	if reply.Dismissed {
		return AskRefresh, nil
	}
	if _, err := f.setValue(ctx, t, reply.Text); err != nil {
		return AskRefresh, err
	}
	return AskRefresh, nil
}

func (t *Text) Display(tr Translator) string {
	if t.value == nil {
		return tr.Sprintf("*Unanswered*")
	}
	return fmt.Sprintf("%v", t.value)
}
