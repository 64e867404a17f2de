package insights

import (
	"context"
	"strings"
	"testing"

	"github.com/hearthbot/hearth/internal/event"
)

func feed(t *testing.T, c *Collector, evts ...event.DomainEvent) {
	t.Helper()
	ctx := context.Background()
	for _, evt := range evts {
		if err := c.HandleEvent(ctx, evt); err != nil {
			t.Fatalf("HandleEvent: %v", err)
		}
	}
}

func outcome(form, status string) event.DomainEvent {
	p := event.OutcomePayload{Scope: event.Scope{Form: form, Session: "s", Actor: "a"}, Status: status}
	switch status {
	case "canceled":
		return event.NewFormCanceled(p)
	case "timed_out":
		return event.NewFormTimedOut(p)
	default:
		return event.NewFormFinished(p)
	}
}

func TestCollector_Counts(t *testing.T) {
	c := NewCollector()
	scope := event.Scope{Form: "guild_creation", Session: "s", Actor: "a"}
	feed(t, c,
		event.NewFormStarted(scope),
		event.NewFormStarted(scope),
		outcome("guild_creation", "finished"),
		outcome("guild_creation", "canceled"),
	)

	fi, ok := c.Form("guild_creation")
	if !ok {
		t.Fatal("form not tracked")
	}
	if fi.Starts != 2 || fi.Finishes != 1 || fi.Cancels != 1 || fi.Timeouts != 0 {
		t.Errorf("counts = %d/%d/%d/%d", fi.Starts, fi.Finishes, fi.Cancels, fi.Timeouts)
	}
	if fi.CompletionRate != 0.5 {
		t.Errorf("completion rate = %v, want 0.5", fi.CompletionRate)
	}
}

func TestCollector_UnknownForm(t *testing.T) {
	c := NewCollector()
	if _, ok := c.Form("nope"); ok {
		t.Error("unknown form reported as tracked")
	}
}

func TestCollector_FieldFriction(t *testing.T) {
	c := NewCollector()
	scope := event.Scope{Form: "guild_creation", Session: "s", Actor: "a"}

	var evts []event.DomainEvent
	for i := 0; i < 3; i++ {
		evts = append(evts, event.NewFieldAnswered(scope, "name"))
	}
	for i := 0; i < 4; i++ {
		evts = append(evts, event.NewFieldRejected(scope, "name", "too short"))
	}
	evts = append(evts, event.NewFieldAnswered(scope, "motto"))
	feed(t, c, evts...)

	fi, _ := c.Form("guild_creation")
	if len(fi.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fi.Fields))
	}
	name := fi.Fields[0]
	if name.Field != "name" {
		t.Fatalf("first field = %q, want first-seen order", name.Field)
	}
	if name.Answers != 3 || name.Rejections != 4 {
		t.Errorf("name counts = %d/%d", name.Answers, name.Rejections)
	}
	if want := 4.0 / 7.0; name.RejectionRate != want {
		t.Errorf("rejection rate = %v, want %v", name.RejectionRate, want)
	}

	if len(fi.Flags) != 1 {
		t.Fatalf("flags = %+v, want one friction warning", fi.Flags)
	}
	flag := fi.Flags[0]
	if flag.Severity != "warning" || flag.Message != "Field name rejects 4 of 7 attempts." {
		t.Errorf("flag = %+v", flag)
	}
}

func TestCollector_AbandonmentFlag(t *testing.T) {
	c := NewCollector()
	feed(t, c,
		outcome("guild_creation", "finished"),
		outcome("guild_creation", "canceled"),
		outcome("guild_creation", "canceled"),
		outcome("guild_creation", "canceled"),
		outcome("guild_creation", "canceled"),
	)

	fi, _ := c.Form("guild_creation")
	if fi.CompletionRate != 0.2 {
		t.Fatalf("completion rate = %v", fi.CompletionRate)
	}
	if len(fi.Flags) != 1 {
		t.Fatalf("flags = %+v", fi.Flags)
	}
	if fi.Flags[0].Message != "Only 20% of resolved runs finish." {
		t.Errorf("flag = %q", fi.Flags[0].Message)
	}
}

func TestCollector_TimeoutFlag(t *testing.T) {
	c := NewCollector()
	feed(t, c,
		outcome("guild_creation", "finished"),
		outcome("guild_creation", "timed_out"),
		outcome("guild_creation", "timed_out"),
	)

	fi, _ := c.Form("guild_creation")
	if len(fi.Flags) != 1 {
		t.Fatalf("flags = %+v", fi.Flags)
	}
	if fi.Flags[0].Severity != "notice" || !strings.Contains(fi.Flags[0].Message, "time out") {
		t.Errorf("flag = %+v", fi.Flags[0])
	}
}

func TestCollector_HealthyFormHasNoFlags(t *testing.T) {
	c := NewCollector()
	scope := event.Scope{Form: "guild_creation", Session: "s", Actor: "a"}
	var evts []event.DomainEvent
	for i := 0; i < 5; i++ {
		evts = append(evts, event.NewFieldAnswered(scope, "name"))
		evts = append(evts, outcome("guild_creation", "finished"))
	}
	evts = append(evts, event.NewFieldRejected(scope, "name", "once"))
	feed(t, c, evts...)

	fi, _ := c.Form("guild_creation")
	if len(fi.Flags) != 0 {
		t.Errorf("flags = %+v, want none", fi.Flags)
	}
}

func TestCollector_AllSortsByName(t *testing.T) {
	c := NewCollector()
	feed(t, c,
		event.NewFormStarted(event.Scope{Form: "shortcut_rewards", Session: "s", Actor: "a"}),
		event.NewFormStarted(event.Scope{Form: "guild_creation", Session: "s", Actor: "a"}),
	)

	all := c.All()
	if len(all) != 2 {
		t.Fatalf("got %d forms", len(all))
	}
	if all[0].Form != "guild_creation" || all[1].Form != "shortcut_rewards" {
		t.Errorf("order = %s, %s", all[0].Form, all[1].Form)
	}
}
