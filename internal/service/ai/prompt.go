package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sales-analyst/backend/internal/model/chat"
)

// newPromptTemplate lays out the system prompt followed by the client history.
func newPromptTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", false),
	)
}

func (a *Analyst) buildMessages(ctx context.Context, history []chat.Message) ([]*schema.Message, error) {
	msgs, err := a.template.Format(ctx, map[string]any{
		"system":  a.persona.SystemPrompt,
		"history": historyMessages(history),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format prompt: %w", err)
	}
	return msgs, nil
}

func historyMessages(history []chat.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case chat.RoleUser:
			out = append(out, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return out
}
