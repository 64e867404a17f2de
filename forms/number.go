package forms

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Number asks for a numeric value through a modal prompt. Submissions are
// checked for numberhood before the field's own validators run, so a bound
// like MinValue always sees a number. Integral input is stored as int64,
// anything else as float64.
type Number struct {
	Base
}

// NewNumber builds a number field.
func NewNumber(name, label string, opts ...FieldOption) *Number {
	return &Number{Base: newBase(name, label, opts)}
}

func (n *Number) Ask(ctx context.Context, f *Form) (AskStatus, error) {
	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptText,
		Title:       f.tr.Sprintf("Enter a value"),
		Label:       n.label,
		Placeholder: f.tr.Sprintf("Enter a value"),
		MinLength:   1,
	})
	if err != nil {
		return AskRefresh, err
	}
	if reply.Dismissed {
		return AskRefresh, nil
	}

	// Decimal commas count as decimal points.
	raw := strings.TrimSpace(strings.ReplaceAll(reply.Text, ",", "."))
	if verr := IsNumber()(raw); verr != nil {
		if nerr := f.reject(ctx, n, verr); nerr != nil {
			return AskRefresh, nerr
		}
		return AskRefresh, nil
	}

	var v any
	if i, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
		v = i
	} else {
		fl, _ := strconv.ParseFloat(raw, 64)
		v = fl
	}
	if _, err := f.setValue(ctx, n, v); err != nil {
		return AskRefresh, err
	}
	return AskRefresh, nil
}

func (n *Number) Display(tr Translator) string {
	if n.value == nil {
		return tr.Sprintf("*Unanswered*")
	}
	if fv, ok := toFloat(n.value); ok && fv == -1 {
		return tr.Sprintf("Infinite")
	}
	return displayNumber(n.value)
}

// displayNumber renders a stored numeric value without exponent notation.
func displayNumber(v any) string {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
