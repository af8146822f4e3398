package websocket

import "github.com/medocupa/access-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing  Action = "ping"
	ActionCheck Action = "check"
	ActionMenu  Action = "menu"
)

// RequestPayload is every message a client may send. Fields unused by the
// action are ignored.
type RequestPayload struct {
	Action   Action `json:"action"`
	Resource string `json:"resource,omitempty"`
	Level    string `json:"level,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventPong    Event = "pong"
	EventAccess  Event = "access"
	EventMenu    Event = "menu"
	EventSession Event = "session"
)

type AccessResponse struct {
	Event    Event  `json:"event"`
	Resource string `json:"resource"`
	Level    string `json:"level"`
	Allowed  bool   `json:"allowed"`
}

type MenuResponse struct {
	Event Event            `json:"event"`
	Items []model.MenuItem `json:"items"`
}

// SessionResponse forwards a published session event.
type SessionResponse struct {
	Event   Event              `json:"event"`
	Payload model.SessionEvent `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
