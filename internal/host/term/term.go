// Package term hosts forms on a terminal. The form view draws as a table,
// prompts read answers line by line from the input, and a small command
// loop moves the form between fields until the run resolves. The package
// backs the interactive `run` command and doubles as a readable reference
// for what a host owes the engine.
package term

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hearthbot/hearth/forms"
)

// Session hosts form runs over a line-based terminal. Input reads cannot be
// interrupted once started, so cancellation is only observed between lines.
// The session is not safe for concurrent use; one run drives it at a time.
type Session struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewSession reads answers from in and writes views, prompts and notices
// to out.
func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{in: bufio.NewScanner(in), out: out}
}

// Render draws the form as a table with a cursor on the current field and a
// line naming the moves that currently apply.
func (s *Session) Render(_ context.Context, view forms.View) error {
	fmt.Fprintf(s.out, "\n%s [%s]\n", view.Title, statusLabel(view.Status))
	if view.Description != "" {
		fmt.Fprintln(s.out, view.Description)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(s.out)
	tw.AppendHeader(table.Row{"", "Field", "Value", ""})
	for _, row := range view.Rows {
		cursor := ""
		if row.Current {
			cursor = ">"
		}
		note := ""
		if row.Required && !row.Answered {
			note = "required"
		}
		tw.AppendRow(table.Row{cursor, row.Label, row.Display, note})
	}
	tw.Render()
	if nav := navLine(view); nav != "" {
		fmt.Fprintf(s.out, "moves: %s\n", nav)
	}
	return nil
}

// Prompt asks on the terminal and blocks until the user answers or submits
// a blank line, which dismisses the prompt.
func (s *Session) Prompt(ctx context.Context, req forms.PromptRequest) (forms.PromptReply, error) {
	switch req.Kind {
	case forms.PromptSelect:
		return s.promptSelect(ctx, req)
	case forms.PromptConfirm:
		return s.promptConfirm(req)
	default:
		return s.promptText(req)
	}
}

// Notify prints a severity-tagged line.
func (s *Session) Notify(_ context.Context, n forms.Notice) error {
	fmt.Fprintf(s.out, "%s %s\n", noticeTag(n.Severity), n.Text)
	return nil
}

// Drive runs a child form inline on the same terminal. The parent's loop
// stays suspended until the child resolves.
func (s *Session) Drive(ctx context.Context, child *forms.Form) (forms.Status, error) {
	fmt.Fprintf(s.out, "\nentering %s\n", child.Title())
	if err := child.Start(ctx, s); err != nil {
		return child.Status(), err
	}
	st, err := s.loop(ctx, child)
	if err == nil {
		fmt.Fprintln(s.out, "back to the parent form")
	}
	return st, err
}

func (s *Session) promptText(req forms.PromptRequest) (forms.PromptReply, error) {
	fmt.Fprintf(s.out, "%s", req.Label)
	if req.Default != "" {
		fmt.Fprintf(s.out, " [%s]", req.Default)
	}
	fmt.Fprint(s.out, " (blank keeps it): ")
	line, ok := s.readLine()
	if !ok {
		return forms.PromptReply{}, io.EOF
	}
	if line == "" {
		return forms.PromptReply{Dismissed: true}, nil
	}
	return forms.PromptReply{Text: line}, nil
}

func (s *Session) promptSelect(ctx context.Context, req forms.PromptRequest) (forms.PromptReply, error) {
	if req.Title != "" {
		fmt.Fprintln(s.out, req.Title)
	}
	fmt.Fprintln(s.out, req.Label)
	for i, opt := range req.Options {
		label := opt.Label
		if opt.Emoji != "" {
			label = opt.Emoji + " " + label
		}
		if opt.Description != "" {
			label += " - " + opt.Description
		}
		mark := "  "
		if opt.Default {
			mark = " *"
		}
		fmt.Fprintf(s.out, "%s%2d) %s\n", mark, i+1, label)
	}
	for {
		if err := ctx.Err(); err != nil {
			return forms.PromptReply{}, err
		}
		switch {
		case req.MaxValues > req.MinValues:
			fmt.Fprintf(s.out, "pick %d to %d, comma-separated (blank dismisses): ", req.MinValues, req.MaxValues)
		case req.MinValues > 1:
			fmt.Fprintf(s.out, "pick %d, comma-separated (blank dismisses): ", req.MinValues)
		default:
			fmt.Fprint(s.out, "pick one (blank dismisses): ")
		}
		line, ok := s.readLine()
		if !ok {
			return forms.PromptReply{}, io.EOF
		}
		if line == "" {
			return forms.PromptReply{Dismissed: true}, nil
		}
		tokens, err := pickTokens(req.Options, line)
		if err != nil {
			fmt.Fprintln(s.out, err)
			continue
		}
		return forms.PromptReply{Tokens: tokens}, nil
	}
}

func (s *Session) promptConfirm(req forms.PromptRequest) (forms.PromptReply, error) {
	if req.Title != "" {
		fmt.Fprintln(s.out, req.Title)
	}
	fmt.Fprintf(s.out, "%s [y/n, blank dismisses]: ", req.Label)
	line, ok := s.readLine()
	if !ok {
		return forms.PromptReply{}, io.EOF
	}
	switch strings.ToLower(line) {
	case "":
		return forms.PromptReply{Dismissed: true}, nil
	case "y", "yes":
		return forms.PromptReply{Tokens: []string{"yes"}}, nil
	default:
		return forms.PromptReply{Tokens: []string{"no"}}, nil
	}
}

// readLine returns the next trimmed input line. ok is false once the input
// is exhausted.
func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// pickTokens maps a comma-separated list of option numbers onto tokens.
func pickTokens(options []forms.PromptOption, line string) ([]string, error) {
	parts := strings.Split(line, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(options) {
			return nil, fmt.Errorf("no option %q", part)
		}
		tokens = append(tokens, options[n-1].Token)
	}
	if len(tokens) == 0 {
		return nil, errors.New("nothing picked")
	}
	return tokens, nil
}

func navLine(view forms.View) string {
	var parts []string
	if view.CanPrevious {
		parts = append(parts, "previous")
	}
	if view.CanNext {
		parts = append(parts, "next")
	}
	if view.CanFinish {
		parts = append(parts, "finish")
	}
	if len(view.GoTo) > 0 {
		parts = append(parts, "goto <field>")
	}
	return strings.Join(parts, ", ")
}

func statusLabel(st forms.Status) string {
	if st == forms.StatusPending {
		return "in progress"
	}
	return string(st)
}

func noticeTag(sev forms.Severity) string {
	switch sev {
	case forms.NoticeSuccess:
		return "ok:"
	case forms.NoticeError:
		return "error:"
	default:
		return "info:"
	}
}
