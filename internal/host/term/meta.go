package term

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hearthbot/hearth/forms"
)

// metaHandler executes the colon commands that inspect a run without
// advancing it.
type metaHandler struct {
	form *forms.Form
	sess *Session
}

func (h *metaHandler) execute(ctx context.Context, command string) {
	command, _, _ = strings.Cut(command, " ")
	switch command {
	case "help":
		h.help()
	case "status":
		h.status()
	case "values":
		h.values()
	case "view":
		if err := h.sess.Render(ctx, h.form.View()); err != nil {
			fmt.Fprintf(h.sess.out, "error: %v\n", err)
		}
	default:
		fmt.Fprintf(h.sess.out, "unknown meta-command ':%s'. Type :help for available commands\n", command)
	}
}

func (h *metaHandler) help() {
	fmt.Fprintln(h.sess.out, `Form commands:
  respond, r, <enter>   Answer the current field
  next, n               Move to the next field
  previous, p           Move back one field
  goto <field>, g       Jump to a field and answer it
  finish, f             Submit the form
  cancel, q             Abandon the form

Meta commands:
  :help      Show this help
  :status    Show the run status
  :values    Show the values collected so far
  :view      Redraw the form`)
}

func (h *metaHandler) status() {
	var b strings.Builder
	fmt.Fprintf(&b, "form:      %s\n", h.form.Name())
	fmt.Fprintf(&b, "status:    %s\n", statusLabel(h.form.Status()))
	fmt.Fprintf(&b, "completed: %v\n", h.form.Completed())
	if cur := h.form.Current(); cur != nil {
		fmt.Fprintf(&b, "current:   %s\n", cur.Name())
	}
	fmt.Fprint(h.sess.out, b.String())
}

func (h *metaHandler) values() {
	tw := table.NewWriter()
	tw.SetOutputMirror(h.sess.out)
	tw.AppendHeader(table.Row{"Field", "Value"})
	for _, fld := range h.form.Fields() {
		display := "-"
		if v := fld.Value(); v != nil {
			display = fmt.Sprintf("%v", v)
		}
		tw.AppendRow(table.Row{fld.Name(), display})
	}
	tw.Render()
}
