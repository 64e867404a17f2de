package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/internal/formdef"
	"github.com/hearthbot/hearth/internal/host/session"
	"github.com/hearthbot/hearth/internal/journal"
)

// frame mirrors ServerMessage with the payload left raw for per-type
// decoding.
type frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func testRegistry(t *testing.T) *formdef.Registry {
	t.Helper()
	r := formdef.NewRegistry()
	require.NoError(t, r.Register(&formdef.Definition{
		Name:  "profile",
		Title: "Profile",
		Fields: []formdef.FieldDef{
			{Name: "name", Kind: formdef.KindText, Label: "Name", Required: true},
			{Name: "motto", Kind: formdef.KindText, Label: "Motto"},
		},
	}))
	require.NoError(t, r.Register(&formdef.Definition{
		Name:   "locked",
		Title:  "Admin only",
		Access: []string{"admin"},
		Fields: []formdef.FieldDef{
			{Name: "note", Kind: formdef.KindText, Label: "Note"},
		},
	}))
	return r
}

type testStack struct {
	handler  *Handler
	server   *httptest.Server
	store    *journal.MemoryStore
	sessions *session.Manager
}

func newTestStack(t *testing.T, idleTimeout time.Duration) *testStack {
	t.Helper()
	store := journal.NewMemoryStore()
	sessions := session.NewManager(time.Hour, idleTimeout)
	h := NewHandler(Options{
		Registry: testRegistry(t),
		Store:    store,
		Sessions: sessions,
		Secret:   testSecret,
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return &testStack{handler: h, server: ts, store: store, sessions: sessions}
}

func (s *testStack) dial(t *testing.T, ctx context.Context, roles []string) *websocket.Conn {
	t.Helper()
	token, err := NewToken(testSecret, "alice", roles, "hearth-eu", time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + token}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func sendMsg(t *testing.T, ctx context.Context, conn *websocket.Conn, typ, id string, data any) {
	t.Helper()
	msg := ClientMessage{Type: typ, ID: id}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		msg.Data = raw
	}
	require.NoError(t, wsjson.Write(ctx, conn, msg))
}

// await reads frames until one of the wanted type arrives. An unexpected
// error frame fails the test so protocol mistakes surface immediately.
func await(t *testing.T, ctx context.Context, conn *websocket.Conn, want string) frame {
	t.Helper()
	for {
		var f frame
		require.NoError(t, wsjson.Read(ctx, conn, &f), "waiting for %q frame", want)
		if f.Type == want {
			return f
		}
		if f.Type == "error" {
			t.Fatalf("unexpected error frame while waiting for %q: %s", want, f.Data)
		}
	}
}

func decodeInto(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestServeHTTPRejectsBadTokens(t *testing.T) {
	h := NewHandler(Options{Secret: testSecret})

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/session/ws", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			h.ServeHTTP(rr, req)
			require.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestWireHappyPath(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stack := newTestStack(t, time.Hour)
	conn := stack.dial(t, ctx, nil)

	var sd SessionData
	decodeInto(t, await(t, ctx, conn, "session").Data, &sd)
	require.NotEmpty(t, sd.SessionID)
	require.Equal(t, "alice", sd.Actor)
	require.Equal(t, "hearth-eu", sd.Cluster)

	sendMsg(t, ctx, conn, "start", "s1", StartData{Form: "profile"})
	var view forms.View
	decodeInto(t, await(t, ctx, conn, "view").Data, &view)
	require.Equal(t, "profile", view.Name)
	require.Len(t, view.Rows, 2)
	require.True(t, view.Rows[0].Current)
	require.False(t, view.CanFinish)

	// The exchange parks on the prompt; a second op must bounce off the
	// in-flight gate, and a stale reply must not feed it.
	sendMsg(t, ctx, conn, "respond", "r1", nil)
	var prompt PromptData
	decodeInto(t, await(t, ctx, conn, "prompt").Data, &prompt)
	require.NotEmpty(t, prompt.Prompt)
	require.Equal(t, forms.PromptText, prompt.Kind)
	require.Equal(t, "Name", prompt.Label)

	sendMsg(t, ctx, conn, "respond", "r2", nil)
	busy := await(t, ctx, conn, "error")
	require.Equal(t, "r2", busy.RequestID)
	var ed ErrorData
	decodeInto(t, busy.Data, &ed)
	require.Equal(t, "busy", ed.Code)

	sendMsg(t, ctx, conn, "prompt_reply", "pr0", PromptReplyData{Prompt: "bogus", Text: "x"})
	stale := await(t, ctx, conn, "error")
	decodeInto(t, stale.Data, &ed)
	require.Equal(t, "no_prompt", ed.Code)

	sendMsg(t, ctx, conn, "prompt_reply", "pr1", PromptReplyData{Prompt: prompt.Prompt, Text: "Hearth"})
	var notice forms.Notice
	decodeInto(t, await(t, ctx, conn, "notice").Data, &notice)
	require.Equal(t, forms.NoticeSuccess, notice.Severity)
	require.Contains(t, notice.Text, "Successfully set value to")

	decodeInto(t, await(t, ctx, conn, "view").Data, &view)
	require.True(t, view.Rows[0].Answered)
	require.True(t, view.CanFinish)

	// Jump to the optional field and dismiss its prompt.
	sendMsg(t, ctx, conn, "goto", "g1", GoToData{Field: "motto"})
	decodeInto(t, await(t, ctx, conn, "prompt").Data, &prompt)
	require.Equal(t, "Motto", prompt.Label)
	sendMsg(t, ctx, conn, "prompt_reply", "pr2", PromptReplyData{Prompt: prompt.Prompt, Dismissed: true})
	decodeInto(t, await(t, ctx, conn, "view").Data, &view)
	require.False(t, view.Rows[1].Answered)

	sendMsg(t, ctx, conn, "finish", "f1", nil)
	var rec journal.Record
	decodeInto(t, await(t, ctx, conn, "result").Data, &rec)
	require.Equal(t, journal.StatusFinished, rec.Status)
	require.Equal(t, "profile", rec.Form)
	require.Equal(t, "alice", rec.Actor)
	require.Equal(t, sd.SessionID, rec.Session)
	require.Equal(t, 1, rec.Answered)
	require.Equal(t, 2, rec.FieldCount)

	stored, err := stack.store.Get(ctx, rec.ID)
	require.NoError(t, err)
	var values map[string]any
	require.NoError(t, json.Unmarshal(stored.Values, &values))
	require.Equal(t, "Hearth", values["name"])

	// The session is free for another run once the record landed.
	sendMsg(t, ctx, conn, "start", "s2", StartData{Form: "profile"})
	await(t, ctx, conn, "view")
	sendMsg(t, ctx, conn, "cancel", "c1", nil)
	decodeInto(t, await(t, ctx, conn, "result").Data, &rec)
	require.Equal(t, journal.StatusCanceled, rec.Status)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestWireGuards(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stack := newTestStack(t, time.Hour)
	conn := stack.dial(t, ctx, []string{"member"})
	await(t, ctx, conn, "session")

	expectError := func(id, code string) {
		t.Helper()
		f := await(t, ctx, conn, "error")
		require.Equal(t, id, f.RequestID)
		var ed ErrorData
		decodeInto(t, f.Data, &ed)
		require.Equal(t, code, ed.Code)
	}

	sendMsg(t, ctx, conn, "respond", "e1", nil)
	expectError("e1", "no_form")

	sendMsg(t, ctx, conn, "start", "e2", StartData{Form: "nope"})
	expectError("e2", "unknown_form")

	sendMsg(t, ctx, conn, "start", "e3", StartData{Form: "locked"})
	expectError("e3", "forbidden")

	sendMsg(t, ctx, conn, "start", "e4", StartData{})
	expectError("e4", "invalid_data")

	sendMsg(t, ctx, conn, "warp", "e5", nil)
	expectError("e5", "unknown_type")

	sendMsg(t, ctx, conn, "ping", "p1", nil)
	pong := await(t, ctx, conn, "pong")
	require.Equal(t, "p1", pong.RequestID)

	// Admin roles pass the same gate.
	admin := stack.dial(t, ctx, []string{"admin"})
	await(t, ctx, admin, "session")
	sendMsg(t, ctx, admin, "start", "a1", StartData{Form: "locked"})
	await(t, ctx, admin, "view")
}

func TestWireSweepTimesOutIdleRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stack := newTestStack(t, time.Millisecond)
	conn := stack.dial(t, ctx, nil)
	await(t, ctx, conn, "session")
	sendMsg(t, ctx, conn, "start", "s1", StartData{Form: "profile"})
	await(t, ctx, conn, "view")

	// The worker's job, done by hand: idle sessions are swept and expired.
	time.Sleep(20 * time.Millisecond)
	swept := stack.sessions.Sweep()
	require.Len(t, swept, 1)
	for _, s := range swept {
		s.Expire()
	}

	var rec journal.Record
	decodeInto(t, await(t, ctx, conn, "result").Data, &rec)
	require.Equal(t, journal.StatusTimedOut, rec.Status)

	stored, err := stack.store.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, journal.StatusTimedOut, stored.Status)
}
