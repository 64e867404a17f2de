package forms

import (
	"context"
	"fmt"
)

// EmojiField asks for an emoji through a modal prompt, after reminding the
// user what kind of input is expected. The value is stored exactly as
// entered; pair it with the IsEmoji validator to enforce well-formedness.
type EmojiField struct {
	Base

	minLen int
	maxLen int
}

// NewEmoji builds an emoji field.
func NewEmoji(name, label string, opts ...FieldOption) *EmojiField {
	return &EmojiField{Base: newBase(name, label, opts), minLen: 3}
}

// Bounds sets the prompt's length hints. Zero max means unbounded.
func (e *EmojiField) Bounds(min, max int) *EmojiField {
	e.minLen, e.maxLen = min, max
	return e
}

func (e *EmojiField) Ask(ctx context.Context, f *Form) (AskStatus, error) {
	if err := f.notify(ctx, NoticeInfo, f.tr.Sprintf("Please enter an emoji")); err != nil {
		return AskRefresh, err
	}

	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptText,
		Title:       f.tr.Sprintf("Enter a value"),
		Label:       e.label,
		Placeholder: f.tr.Sprintf("Enter a value"),
		MinLength:   e.minLen,
		MaxLength:   e.maxLen,
	})
	if err != nil {
		return AskRefresh, err
	}
	if reply.Dismissed {
		return AskRefresh, nil
	}
	if _, err := f.setValue(ctx, e, reply.Text); err != nil {
		return AskRefresh, err
	}
	return AskRefresh, nil
}

func (e *EmojiField) Display(tr Translator) string {
	if e.value == nil {
		return tr.Sprintf("*Unanswered*")
	}
	return fmt.Sprintf("%v", e.value)
}
