// Package chat holds the conversation types shared by the resolution
// engine's components.
package chat

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prior turn in a session, oldest first.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// History is the ordered, append-only sequence of prior turns.
type History []Message

// LastAssistant returns the most recent assistant message text, or "".
func (h History) LastAssistant() string {
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].Role == RoleAssistant {
			return h[i].Text
		}
	}
	return ""
}

// Tail returns up to n of the most recent messages.
func (h History) Tail(n int) History {
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}
