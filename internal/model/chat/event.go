package chat

import "time"

// EventType names the kind of change published for a session.
type EventType string

const (
	EventMessage EventType = "message"
	EventState   EventType = "state"
	EventVoice   EventType = "voice"
)

// Event is pushed to session subscribers (SSE and WebSocket clients).
type Event struct {
	Type      EventType    `json:"type"`
	SessionID string       `json:"sessionId"`
	Message   *Message     `json:"message,omitempty"`
	State     ComposeState `json:"state,omitempty"`
	Composing bool         `json:"composing"`
	Listening bool         `json:"listening"`
	Draft     string       `json:"draft,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
