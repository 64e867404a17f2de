package session

import (
	"context"
	"testing"
	"time"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/forms/formtest"
)

func newForm(t *testing.T) *forms.Form {
	t.Helper()
	f, err := forms.New("profile", "Profile", []forms.Field{
		forms.NewText("name", "Name"),
	})
	if err != nil {
		t.Fatalf("building form: %v", err)
	}
	return f
}

func resolvedForm(t *testing.T) *forms.Form {
	t.Helper()
	ctx := context.Background()
	f := newForm(t)
	if err := f.Start(ctx, formtest.NewSession(t)); err != nil {
		t.Fatalf("starting form: %v", err)
	}
	if err := f.Cancel(ctx); err != nil {
		t.Fatalf("canceling form: %v", err)
	}
	return f
}

func TestSessionBind(t *testing.T) {
	s := New("alice", "hearth-eu", []string{"admin"}, nil)
	if s.ID == "" || s.Actor != "alice" || s.Cluster != "hearth-eu" {
		t.Fatalf("session identity not populated: %+v", s)
	}
	if s.Form() != nil {
		t.Fatal("fresh session should have no form")
	}

	running := newForm(t)
	if !s.Bind(running) {
		t.Fatal("first bind should succeed")
	}
	if s.Bind(newForm(t)) {
		t.Fatal("bind should fail while a run is unresolved")
	}
	if s.Form() != running {
		t.Fatal("failed bind must not replace the bound form")
	}
}

func TestSessionRebindAfterResolution(t *testing.T) {
	s := New("alice", "", nil, nil)
	if !s.Bind(resolvedForm(t)) {
		t.Fatal("first bind should succeed")
	}
	next := newForm(t)
	if !s.Bind(next) {
		t.Fatal("bind should succeed once the earlier run resolved")
	}
	if s.Form() != next {
		t.Fatal("bound form should be the new run")
	}
}

func TestSessionExpire(t *testing.T) {
	canceled := false
	s := New("alice", "", nil, func() { canceled = true })
	s.Expire()
	if !canceled {
		t.Fatal("Expire should invoke the connection cancel")
	}

	// A session built without a cancel must not panic.
	New("bob", "", nil, nil).Expire()
}

func TestSessionLimits(t *testing.T) {
	s := New("alice", "", nil, nil)
	if s.IsExpired(0) || s.IsIdle(0) {
		t.Fatal("zero limits must disable the checks")
	}
	if s.IsExpired(time.Hour) || s.IsIdle(time.Hour) {
		t.Fatal("a fresh session is neither expired nor idle")
	}

	s.CreatedAt = time.Now().Add(-2 * time.Hour)
	if !s.IsExpired(time.Hour) {
		t.Fatal("backdated session should be expired")
	}

	time.Sleep(2 * time.Millisecond)
	if !s.IsIdle(time.Nanosecond) {
		t.Fatal("untouched session should go idle")
	}
	s.Touch()
	if s.IsIdle(time.Minute) {
		t.Fatal("Touch should reset the idle clock")
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(time.Hour, time.Hour)
	s := m.Create("alice", "hearth-eu", []string{"admin"}, nil)
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	if got := m.Get(s.ID); got != s {
		t.Fatal("Get should return the created session")
	}
	if m.Get("missing") != nil {
		t.Fatal("Get of an unknown ID should return nil")
	}

	m.Remove(s.ID)
	if m.Len() != 0 || m.Get(s.ID) != nil {
		t.Fatal("Remove should drop the session")
	}
}

func TestManagerGetExpiresStale(t *testing.T) {
	expired := false
	m := NewManager(time.Hour, 0)
	s := m.Create("alice", "", nil, func() { expired = true })
	s.CreatedAt = time.Now().Add(-2 * time.Hour)

	if m.Get(s.ID) != nil {
		t.Fatal("stale session should not be returned")
	}
	if m.Len() != 0 {
		t.Fatal("stale session should be removed")
	}
	if !expired {
		t.Fatal("stale session should be expired on lookup")
	}
}

func TestManagerSweep(t *testing.T) {
	m := NewManager(time.Hour, 0)
	fresh := m.Create("alice", "", nil, nil)
	stale := m.Create("bob", "", nil, nil)
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)

	swept := m.Sweep()
	if len(swept) != 1 || swept[0] != stale {
		t.Fatalf("Sweep returned %d sessions, want the stale one", len(swept))
	}
	if m.Len() != 1 || m.Get(fresh.ID) == nil {
		t.Fatal("fresh session should survive the sweep")
	}
}
