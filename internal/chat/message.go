package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role is the author of a message.
type Role string

// Roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Placeholder texts shown in the conversation.
const (
	PendingContent = "digitando…"
	FailedContent  = "Erro ao responder"

	// DefaultErrorMessage is recorded when a failed send carries no message.
	DefaultErrorMessage = "Erro ao enviar"
)

// Message is one entry of the conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Pending   bool      `json:"pending,omitempty"`
	Error     bool      `json:"error,omitempty"`
}

// Turn is the role and content of a message as sent to the backend.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage returns a message with a fresh id.
func NewMessage(role Role, content string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: at,
	}
}

// Turn strips the message down to what the backend needs.
func (m Message) Turn() Turn {
	return Turn{Role: m.Role, Content: m.Content}
}
