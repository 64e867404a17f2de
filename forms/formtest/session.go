// Package formtest provides a scripted Session for exercising forms in
// tests without a real host: prompt replies are queued up front, selects
// are answered by option label, and everything the form emits (views,
// prompts, notices) is recorded for assertions.
package formtest

import (
	"context"
	"sync"
	"testing"

	"github.com/hearthbot/hearth/forms"
)

// Reply is one scripted answer to a prompt. Literal replies are returned
// as-is; label replies are resolved against the prompt's options at ask
// time, which is the only way to answer selects whose wire tokens are
// generated per ask.
type Reply struct {
	literal forms.PromptReply
	labels  []string
}

// Text scripts a text submission.
func Text(s string) Reply {
	return Reply{literal: forms.PromptReply{Text: s}}
}

// Dismiss scripts closing the prompt without submitting.
func Dismiss() Reply {
	return Reply{literal: forms.PromptReply{Dismissed: true}}
}

// Confirm scripts a yes on a confirm prompt.
func Confirm() Reply {
	return Reply{literal: forms.PromptReply{Tokens: []string{"yes"}}}
}

// Deny scripts a no on a confirm prompt.
func Deny() Reply {
	return Reply{literal: forms.PromptReply{Tokens: []string{"no"}}}
}

// Pick scripts selecting options by their labels.
func Pick(labels ...string) Reply {
	return Reply{labels: labels}
}

// Tokens scripts selecting options by raw wire token, for tests that
// captured tokens from an earlier prompt.
func Tokens(tokens ...string) Reply {
	return Reply{literal: forms.PromptReply{Tokens: tokens}}
}

// Session is a scripted forms.Session. The zero value is not usable; call
// NewSession.
type Session struct {
	t *testing.T

	mu      sync.Mutex
	queue   []Reply
	Views   []forms.View
	Prompts []forms.PromptRequest
	Notices []forms.Notice
}

// NewSession builds a session with an optional initial script.
func NewSession(t *testing.T, replies ...Reply) *Session {
	return &Session{t: t, queue: replies}
}

// Queue appends replies to the script.
func (s *Session) Queue(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, replies...)
}

// Render records the view.
func (s *Session) Render(_ context.Context, v forms.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Views = append(s.Views, v)
	return nil
}

// Prompt records the request and pops the next scripted reply. An
// exhausted script dismisses, so a form never hangs on a missing answer.
func (s *Session) Prompt(_ context.Context, req forms.PromptRequest) (forms.PromptReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, req)

	if len(s.queue) == 0 {
		return forms.PromptReply{Dismissed: true}, nil
	}
	next := s.queue[0]
	s.queue = s.queue[1:]

	if next.labels == nil {
		return next.literal, nil
	}
	tokens := make([]string, 0, len(next.labels))
	for _, label := range next.labels {
		tok, ok := findToken(req.Options, label)
		if !ok {
			s.t.Fatalf("formtest: no option labeled %q in prompt %q", label, req.Title)
		}
		tokens = append(tokens, tok)
	}
	return forms.PromptReply{Tokens: tokens}, nil
}

// Notify records the notice.
func (s *Session) Notify(_ context.Context, n forms.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notices = append(s.Notices, n)
	return nil
}

// Drive runs a child form against this same session: respond while script
// remains, finish when complete, cancel when the script runs dry first.
func (s *Session) Drive(ctx context.Context, child *forms.Form) (forms.Status, error) {
	if err := child.Start(ctx, s); err != nil {
		return forms.StatusPending, err
	}
	for {
		if child.Completed() {
			if err := child.Finish(ctx); err != nil {
				return child.Status(), err
			}
			break
		}
		s.mu.Lock()
		remaining := len(s.queue)
		s.mu.Unlock()
		if remaining == 0 {
			if err := child.Cancel(ctx); err != nil {
				return child.Status(), err
			}
			break
		}
		if err := child.Respond(ctx); err != nil {
			return child.Status(), err
		}
		s.mu.Lock()
		stuck := len(s.queue) == remaining
		s.mu.Unlock()
		if stuck {
			// The ask never prompted (no choices, lookup failure); cancel
			// instead of spinning.
			if err := child.Cancel(ctx); err != nil {
				return child.Status(), err
			}
			break
		}
	}
	return child.Status(), nil
}

// LastView returns the most recent render.
func (s *Session) LastView() forms.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Views) == 0 {
		s.t.Fatalf("formtest: no views rendered")
	}
	return s.Views[len(s.Views)-1]
}

// LastNotice returns the most recent notice.
func (s *Session) LastNotice() forms.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Notices) == 0 {
		s.t.Fatalf("formtest: no notices sent")
	}
	return s.Notices[len(s.Notices)-1]
}

// NoticeTexts returns every notice text in order.
func (s *Session) NoticeTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Notices))
	for i, n := range s.Notices {
		out[i] = n.Text
	}
	return out
}

func findToken(options []forms.PromptOption, label string) (string, bool) {
	for _, o := range options {
		if o.Label == label {
			return o.Token, true
		}
	}
	return "", false
}
