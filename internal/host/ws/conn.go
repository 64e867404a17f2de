package ws

import (
	"context"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/internal/host"
	"github.com/hearthbot/hearth/internal/host/session"
)

// run is one root form run on a connection. done closes once the run is
// journaled and its result frame pushed, so teardown can wait for the
// record before the connection goes away.
type run struct {
	form *forms.Form
	meta host.Run
	done chan struct{}
}

// connSession adapts one WebSocket connection to the forms.Session
// surface. Writes are serialized over the connection; Prompt parks the
// calling exchange on a reply channel the read loop feeds.
type connSession struct {
	conn *websocket.Conn
	sess *session.Session

	writeMu sync.Mutex

	mu      sync.Mutex
	cur     *run
	active  *forms.Form // innermost running form, ops target it
	pending chan forms.PromptReply
	prompt  string
}

func newConnSession(conn *websocket.Conn, sess *session.Session) *connSession {
	return &connSession{conn: conn, sess: sess}
}

func (c *connSession) send(ctx context.Context, msg ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsjson.Write(ctx, c.conn, msg)
}

// Render pushes the engine's view to the client.
func (c *connSession) Render(ctx context.Context, view forms.View) error {
	return c.send(ctx, ServerMessage{Type: "view", Data: view})
}

// Notify pushes a transient message to the client.
func (c *connSession) Notify(ctx context.Context, n forms.Notice) error {
	return c.send(ctx, ServerMessage{Type: "notice", Data: n})
}

// Prompt pushes an input request and blocks until the read loop delivers
// the client's prompt_reply or ctx is done.
func (c *connSession) Prompt(ctx context.Context, req forms.PromptRequest) (forms.PromptReply, error) {
	id := uuid.New().String()
	ch := make(chan forms.PromptReply, 1)
	c.mu.Lock()
	c.pending, c.prompt = ch, id
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		if c.prompt == id {
			c.pending, c.prompt = nil, ""
		}
		c.mu.Unlock()
	}()

	if err := c.send(ctx, ServerMessage{Type: "prompt", Data: PromptData{Prompt: id, PromptRequest: req}}); err != nil {
		return forms.PromptReply{}, err
	}
	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		return forms.PromptReply{}, ctx.Err()
	}
}

// Drive runs a nested form on this connection. The child becomes the
// active form so client ops reach it while the parent exchange stays
// parked in Wait.
func (c *connSession) Drive(ctx context.Context, child *forms.Form) (forms.Status, error) {
	parent := c.setActive(child)
	defer c.setActive(parent)
	if err := child.Start(ctx, c); err != nil {
		return child.Status(), err
	}
	return child.Wait(ctx)
}

// deliver resolves the pending prompt. It reports whether a prompt was
// waiting under the given ID; an empty ID answers whatever prompt is open.
func (c *connSession) deliver(id string, reply forms.PromptReply) bool {
	c.mu.Lock()
	ch := c.pending
	if ch == nil || (id != "" && id != c.prompt) {
		c.mu.Unlock()
		return false
	}
	c.pending, c.prompt = nil, ""
	c.mu.Unlock()
	ch <- reply
	return true
}

func (c *connSession) setActive(f *forms.Form) *forms.Form {
	c.mu.Lock()
	prev := c.active
	c.active = f
	c.mu.Unlock()
	return prev
}

func (c *connSession) activeForm() *forms.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// beginRun binds a new root run to the session. It fails while an earlier
// run is still unresolved.
func (c *connSession) beginRun(f *forms.Form, meta host.Run) (*run, bool) {
	if !c.sess.Bind(f) {
		return nil, false
	}
	r := &run{form: f, meta: meta, done: make(chan struct{})}
	c.mu.Lock()
	c.cur = r
	c.active = f
	c.mu.Unlock()
	return r, true
}

// endRun clears the run if it is still current. A newer run that already
// took its place stays untouched.
func (c *connSession) endRun(r *run) {
	c.mu.Lock()
	if c.cur == r {
		c.cur = nil
		c.active = nil
	}
	c.mu.Unlock()
}

func (c *connSession) currentRun() *run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}
