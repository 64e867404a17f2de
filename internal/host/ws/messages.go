// Package ws hosts forms over WebSocket connections. One connection is one
// authenticated session driving at most one form at a time: engine pushes
// (views, prompts, notices) flow to the client as the form runs, prompt
// replies flow back to the exchange parked on them, and a result frame
// closes every run once its journal record is written.
package ws

import (
	"encoding/json"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/internal/journal"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string          `json:"type"` // "start", "respond", "next", "previous", "goto", "finish", "cancel", "prompt_reply", "ping"
	ID   string          `json:"id"`   // client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// StartData is the payload for "start" messages. Prefill seeds field
// values for edit mode.
type StartData struct {
	Form    string         `json:"form"`
	Prefill map[string]any `json:"prefill,omitempty"`
}

// GoToData is the payload for "goto" messages.
type GoToData struct {
	Field string `json:"field"`
}

// PromptReplyData is the payload for "prompt_reply" messages. Prompt names
// the prompt frame being answered; a reply for a prompt that is no longer
// pending is rejected.
type PromptReplyData struct {
	Prompt    string   `json:"prompt"`
	Text      string   `json:"text,omitempty"`
	Tokens    []string `json:"tokens,omitempty"`
	Dismissed bool     `json:"dismissed,omitempty"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client messages. View,
// prompt and notice frames are session pushes and carry no request ID;
// error and pong frames echo the request that caused them.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "view", "prompt", "notice", "result", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // echoes client ID
	Data      any    `json:"data,omitempty"`
}

// SessionData carries session information, sent once after the upgrade.
type SessionData struct {
	SessionID string `json:"session_id"`
	Actor     string `json:"actor"`
	Cluster   string `json:"cluster,omitempty"`
}

// PromptData wraps the engine's input request with the ID a prompt_reply
// answers it by. View frames carry a forms.View and notice frames a
// forms.Notice unchanged.
type PromptData struct {
	Prompt string `json:"prompt"`
	forms.PromptRequest
}

// ResultData is the stored journal record of a resolved run, pushed once
// the record is readable.
type ResultData = journal.Record

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
