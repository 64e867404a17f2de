package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/internal/event"
	"github.com/hearthbot/hearth/internal/formdef"
	"github.com/hearthbot/hearth/internal/host"
	"github.com/hearthbot/hearth/internal/host/session"
	"github.com/hearthbot/hearth/internal/journal"
	"github.com/hearthbot/hearth/internal/policy"
)

const (
	// outcomeWriteWait bounds the result frame write so a stalled client
	// cannot wedge connection teardown behind its journal wait.
	outcomeWriteWait = 10 * time.Second
)

// Options carries the handler's collaborators.
type Options struct {
	Registry   *formdef.Registry
	Lookup     forms.Lookup
	Translator forms.Translator
	Store      journal.Store
	Bus        event.Publisher
	Sessions   *session.Manager
	Secret     []byte
}

// Handler upgrades authenticated clients and drives forms over the wire
// protocol.
type Handler struct {
	registry   *formdef.Registry
	lookup     forms.Lookup
	translator forms.Translator
	store      journal.Store
	bus        event.Publisher
	sessions   *session.Manager
	secret     []byte
}

// NewHandler creates a WebSocket handler with all dependencies.
func NewHandler(opts Options) *Handler {
	return &Handler{
		registry:   opts.Registry,
		lookup:     opts.Lookup,
		translator: opts.Translator,
		store:      opts.Store,
		bus:        opts.Bus,
		sessions:   opts.Sessions,
		secret:     opts.Secret,
	}
}

// ServeHTTP authenticates the bearer token, upgrades to WebSocket and runs
// the message loop. The connection's context is the session's lifeline:
// the sweeper cancels it to expire the session, and teardown times out
// whatever run it leaves behind.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := ParseToken(h.secret, bearerToken(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("ws: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := h.sessions.Create(claims.Actor, claims.Cluster, claims.Roles, cancel)
	defer h.sessions.Remove(sess.ID)

	c := newConnSession(conn, sess)
	h.send(ctx, c, ServerMessage{
		Type: "session",
		Data: SessionData{SessionID: sess.ID, Actor: sess.Actor, Cluster: sess.Cluster},
	})

	h.loop(ctx, c)
	cancel()
	h.teardown(c)
}

// loop reads client messages until the connection or its context closes.
// Engine ops run off the read loop so prompt replies keep flowing while an
// exchange blocks; the form's own busy flag is the in-flight gate, and a
// second op while one runs fails fast with a busy frame.
func (h *Handler) loop(ctx context.Context, c *connSession) {
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}
		c.sess.Touch()

		switch msg.Type {
		case "start":
			h.handleStart(ctx, c, msg)
		case "respond", "next", "previous", "goto", "finish", "cancel":
			h.handleFormOp(ctx, c, msg)
		case "prompt_reply":
			h.handlePromptReply(ctx, c, msg)
		case "ping":
			h.send(ctx, c, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.sendError(ctx, c, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) handleStart(ctx context.Context, c *connSession, msg ClientMessage) {
	var data StartData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, c, msg.ID, "invalid_data", "invalid start data")
		return
	}
	if data.Form == "" {
		h.sendError(ctx, c, msg.ID, "invalid_data", "start names no form")
		return
	}

	def, ok := h.registry.Get(data.Form)
	if !ok {
		h.sendError(ctx, c, msg.ID, "unknown_form", fmt.Sprintf("unknown form: %s", data.Form))
		return
	}
	if err := policy.Check(def.Name, c.sess.Actor, def.Access, c.sess.Roles); err != nil {
		h.sendError(ctx, c, msg.ID, "forbidden", err.Error())
		return
	}

	scope := event.Scope{
		Form:    def.Name,
		Session: c.sess.ID,
		Actor:   c.sess.Actor,
		Cluster: c.sess.Cluster,
	}
	f, err := formdef.Build(def, formdef.BuildOptions{
		Lookup:     h.lookup,
		Translator: h.translator,
		Observers:  []forms.Observer{event.NewRecorder(h.bus, scope)},
		Prefill:    data.Prefill,
	})
	if err != nil {
		h.sendError(ctx, c, msg.ID, "build_failed", err.Error())
		return
	}

	r, ok := c.beginRun(f, host.Run{Scope: scope, Prefill: data.Prefill, StartedAt: time.Now()})
	if !ok {
		h.sendError(ctx, c, msg.ID, "busy", "a form is already running on this session")
		return
	}

	go h.awaitOutcome(c, r)
	go h.runOp(ctx, c, msg, func() error { return f.Start(ctx, c) })
}

func (h *Handler) handleFormOp(ctx context.Context, c *connSession, msg ClientMessage) {
	f := c.activeForm()
	if f == nil {
		h.sendError(ctx, c, msg.ID, "no_form", "no form is running on this session")
		return
	}

	var op func() error
	switch msg.Type {
	case "respond":
		op = func() error { return f.Respond(ctx) }
	case "next":
		op = func() error { return f.Next(ctx) }
	case "previous":
		op = func() error { return f.Previous(ctx) }
	case "goto":
		var data GoToData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.Field == "" {
			h.sendError(ctx, c, msg.ID, "invalid_data", "goto names no field")
			return
		}
		op = func() error { return f.GoTo(ctx, data.Field) }
	case "finish":
		op = func() error { return f.Finish(ctx) }
	case "cancel":
		op = func() error { return f.Cancel(ctx) }
	}
	go h.runOp(ctx, c, msg, op)
}

func (h *Handler) handlePromptReply(ctx context.Context, c *connSession, msg ClientMessage) {
	var data PromptReplyData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, c, msg.ID, "invalid_data", "invalid prompt reply")
		return
	}
	reply := forms.PromptReply{Dismissed: data.Dismissed, Text: data.Text, Tokens: data.Tokens}
	if !c.deliver(data.Prompt, reply) {
		h.sendError(ctx, c, msg.ID, "no_prompt", "no prompt is waiting for a reply")
	}
}

// runOp executes one engine interaction and reports its failure to the
// client. Context errors stay silent, the connection is going away.
func (h *Handler) runOp(ctx context.Context, c *connSession, msg ClientMessage, op func() error) {
	err := op()
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}

	code := "internal"
	switch {
	case errors.Is(err, forms.ErrBusy):
		code = "busy"
	case errors.Is(err, forms.ErrIncomplete):
		code = "incomplete"
	case errors.Is(err, forms.ErrNoSuchField):
		code = "no_such_field"
	case errors.Is(err, forms.ErrResolved):
		code = "resolved"
	case errors.Is(err, forms.ErrNotStarted):
		code = "not_started"
	case errors.Is(err, forms.ErrStarted):
		code = "started"
	}
	if code == "internal" {
		log.Printf("ws: %s op failed: %v", msg.Type, err)
	}
	h.sendError(ctx, c, msg.ID, code, err.Error())
}

// awaitOutcome journals the run once it resolves and pushes the result
// frame. It waits on the background context so a dying connection still
// gets its outcome journaled.
func (h *Handler) awaitOutcome(c *connSession, r *run) {
	defer close(r.done)
	if _, err := r.form.Wait(context.Background()); err != nil {
		return
	}
	rec, err := host.Conclude(context.Background(), r.form, r.meta, h.store, h.bus)

	writeCtx, cancel := context.WithTimeout(context.Background(), outcomeWriteWait)
	defer cancel()
	if err != nil {
		log.Printf("ws: concluding run: %v", err)
		h.sendError(writeCtx, c, "", "journal_failed", "failed to journal the run")
		c.endRun(r)
		return
	}
	h.send(writeCtx, c, ServerMessage{Type: "result", Data: rec})
	c.endRun(r)
}

// teardown times out whatever run the connection leaves behind and waits
// for its journal write, so shutdown never races a pending record. The
// outcome settles before the final render, which may fail on a dead
// connection.
func (h *Handler) teardown(c *connSession) {
	r := c.currentRun()
	if r == nil {
		return
	}
	_ = r.form.Timeout(context.Background())
	<-r.done
}

func (h *Handler) send(ctx context.Context, c *connSession, msg ServerMessage) {
	if err := c.send(ctx, msg); err != nil {
		log.Printf("ws: write error: %v", err)
	}
}

func (h *Handler) sendError(ctx context.Context, c *connSession, requestID, code, message string) {
	h.send(ctx, c, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
