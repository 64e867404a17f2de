package forms

import (
	"context"
	"fmt"
)

// Session is the surface a form runs against. Hosts implement it once per
// connected user: the websocket host forwards views and prompts over the
// wire, the terminal host draws them, and tests script replies. Every method
// takes the caller's context so a disconnecting host can unwind a form that
// is blocked waiting for input.
type Session interface {
	// Render replaces the session's current form view.
	Render(ctx context.Context, view View) error

	// Prompt asks the user for input and blocks until they reply, dismiss
	// the prompt, or ctx is done.
	Prompt(ctx context.Context, req PromptRequest) (PromptReply, error)

	// Notify shows a transient message without disturbing the form view.
	Notify(ctx context.Context, n Notice) error

	// Drive runs a nested form to completion on this session and reports
	// how it resolved. The parent form stays suspended until Drive returns.
	Drive(ctx context.Context, child *Form) (Status, error)
}

// Lookup resolves the reference choices some fields offer. Hosts back it
// with whatever catalog they have; an empty result is not an error, the
// field tells the user there is nothing to pick.
type Lookup interface {
	Currencies(ctx context.Context) ([]*Choice, error)
	Items(ctx context.Context) ([]*Choice, error)
	Roles(ctx context.Context) ([]*Choice, error)
	Stats(ctx context.Context) ([]*Choice, error)
}

// Translator renders user-facing message templates. Validation messages and
// labels pass through it on their way to the session, so hosts can localize
// without the engine knowing about locales.
type Translator interface {
	Sprintf(format string, args ...any) string
}

// plainTranslator is the fallback when a form is built without one.
type plainTranslator struct{}

func (plainTranslator) Sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// View is a complete render of a form: header, one row per appearing field,
// and the navigation affordances that currently apply.
type View struct {
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Rows        []FieldRow `json:"rows"`
	Status      Status     `json:"status"`
	CanPrevious bool       `json:"can_previous"`
	CanNext     bool       `json:"can_next"`
	CanFinish   bool       `json:"can_finish"`

	// GoTo lists jump targets, populated only when the form has more than
	// two navigable fields.
	GoTo []GoToTarget `json:"go_to,omitempty"`
}

// FieldRow is one field line in a rendered form.
type FieldRow struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Display  string `json:"display"`
	Required bool   `json:"required"`
	Current  bool   `json:"current"`
	Answered bool   `json:"answered"`
}

// GoToTarget names a field the user may jump to directly.
type GoToTarget struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// PromptKind selects the input surface a prompt wants.
type PromptKind string

const (
	// PromptText asks for free text, modal-style.
	PromptText PromptKind = "text"
	// PromptSelect asks the user to pick from options.
	PromptSelect PromptKind = "select"
	// PromptConfirm asks a yes/no question.
	PromptConfirm PromptKind = "confirm"
)

// PromptRequest describes one request for user input.
type PromptRequest struct {
	Kind        PromptKind     `json:"kind"`
	Title       string         `json:"title"`
	Label       string         `json:"label"`
	Placeholder string         `json:"placeholder,omitempty"`
	Default     string         `json:"default,omitempty"`
	MinLength   int            `json:"min_length,omitempty"`
	MaxLength   int            `json:"max_length,omitempty"`
	Options     []PromptOption `json:"options,omitempty"`
	MinValues   int            `json:"min_values,omitempty"`
	MaxValues   int            `json:"max_values,omitempty"`
}

// PromptOption is one selectable entry in a PromptSelect request.
type PromptOption struct {
	Token       string `json:"token"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

// PromptReply carries the user's answer. Dismissed means the prompt was
// closed without submitting; Text holds modal input, Tokens the picked
// option tokens.
type PromptReply struct {
	Dismissed bool     `json:"dismissed,omitempty"`
	Text      string   `json:"text,omitempty"`
	Tokens    []string `json:"tokens,omitempty"`
}

// Confirmed reports whether a PromptConfirm reply answered yes.
func (r PromptReply) Confirmed() bool {
	return !r.Dismissed && len(r.Tokens) > 0 && r.Tokens[0] == "yes"
}

// Severity grades a notice.
type Severity string

const (
	NoticeInfo    Severity = "info"
	NoticeSuccess Severity = "success"
	NoticeError   Severity = "error"
)

// Notice is a transient message shown outside the form view.
type Notice struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

// options for building prompt option lists from choices.
func promptOptions(choices []*Choice) []PromptOption {
	out := make([]PromptOption, 0, len(choices))
	for _, c := range choices {
		out = append(out, PromptOption{
			Token:       c.token,
			Label:       c.Label,
			Description: c.Description,
			Emoji:       c.Emoji,
			Default:     c.selected,
		})
	}
	return out
}
