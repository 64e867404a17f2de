package term

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hearthbot/hearth/forms"
)

// Run starts f on a terminal session and drives it with commands read from
// in until the run resolves. A blank command answers the current field, so
// filling a form is mostly hitting enter and typing values. EOF on the
// input cancels the run.
func Run(ctx context.Context, f *forms.Form, in io.Reader, out io.Writer) (forms.Status, error) {
	s := NewSession(in, out)
	if err := f.Start(ctx, s); err != nil {
		return f.Status(), err
	}
	return s.loop(ctx, f)
}

func (s *Session) loop(ctx context.Context, f *forms.Form) (forms.Status, error) {
	meta := &metaHandler{form: f, sess: s}
	for !f.Status().Resolved() {
		if err := ctx.Err(); err != nil {
			return f.Status(), err
		}
		fmt.Fprintf(s.out, "%s> ", f.Name())
		line, ok := s.readLine()
		if !ok {
			if err := f.Cancel(ctx); err != nil && !errors.Is(err, forms.ErrResolved) {
				return f.Status(), err
			}
			continue
		}
		if line == "" {
			line = "respond"
		}
		if rest, found := strings.CutPrefix(line, ":"); found {
			meta.execute(ctx, rest)
			continue
		}
		command, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		var err error
		switch command {
		case "respond", "r":
			err = f.Respond(ctx)
		case "next", "n":
			err = f.Next(ctx)
		case "previous", "prev", "p":
			err = f.Previous(ctx)
		case "goto", "g":
			if arg == "" {
				fmt.Fprintln(s.out, "goto needs a field name")
				continue
			}
			err = f.GoTo(ctx, arg)
		case "finish", "f":
			err = f.Finish(ctx)
		case "cancel", "q":
			err = f.Cancel(ctx)
		default:
			fmt.Fprintf(s.out, "unknown command %q. Type :help for available commands\n", command)
			continue
		}
		switch {
		case err == nil:
		case errors.Is(err, forms.ErrIncomplete):
			fmt.Fprintln(s.out, "required fields are still unanswered")
		case errors.Is(err, forms.ErrNoSuchField):
			fmt.Fprintf(s.out, "no field named %q\n", arg)
		case errors.Is(err, forms.ErrResolved):
			// The loop condition picks the resolution up.
		case errors.Is(err, io.EOF):
			// Input ended mid-prompt. Treat it like closing the terminal.
			if cerr := f.Cancel(ctx); cerr != nil && !errors.Is(cerr, forms.ErrResolved) {
				return f.Status(), cerr
			}
		default:
			return f.Status(), err
		}
	}
	return f.Status(), nil
}
