package chat

import "time"

// Session captures a transient anonymous conversation.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// ComposeState tracks whether an assistant reply is pending.
type ComposeState string

const (
	StateIdle          ComposeState = "idle"
	StateAwaitingReply ComposeState = "awaiting_reply"
)

// Composing reports whether the typing indicator should be shown.
func (s ComposeState) Composing() bool {
	return s == StateAwaitingReply
}
