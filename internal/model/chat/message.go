package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role 标识消息的发送方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrInvalidHistory is returned when a client-supplied conversation is malformed.
var ErrInvalidHistory = errors.New("invalid conversation history")

// Message is one turn of a conversation as exchanged with the browser.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Entry is a Message recorded in a server-side transcript.
type Entry struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Message
	CreatedAt time.Time `json:"createdAt"`
}

// Validate shape-checks a conversation before it is forwarded to the model.
// The history must be non-empty, use known roles, carry non-blank content and
// end with a user turn.
func Validate(messages []Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("%w: messages are required", ErrInvalidHistory)
	}

	for i, msg := range messages {
		switch msg.Role {
		case RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidHistory, i, msg.Role)
		}
		if strings.TrimSpace(msg.Content) == "" {
			return fmt.Errorf("%w: message %d has empty content", ErrInvalidHistory, i)
		}
	}

	if messages[len(messages)-1].Role != RoleUser {
		return fmt.Errorf("%w: last message must come from the user", ErrInvalidHistory)
	}
	return nil
}
