package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/sales-analyst/backend/internal/config"
)

// OpenAI calls an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client *goopenai.Client
	model  string
}

// NewOpenAI creates a client for cfg.BaseURL authenticated with cfg.APIKey.
func NewOpenAI(cfg config.GatewayConfig) *OpenAI {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAI{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Complete sends the conversation and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, req Request) (*schema.Message, error) {
	apiReq := goopenai.ChatCompletionRequest{
		Model:    o.model,
		Messages: toOpenAIMessages(req.Messages),
	}
	if len(req.Tools) > 0 {
		apiReq.Tools = make([]goopenai.Tool, 0, len(req.Tools))
		for _, def := range req.Tools {
			apiReq.Tools = append(apiReq.Tools, goopenai.Tool{
				Type: goopenai.ToolTypeFunction,
				Function: &goopenai.FunctionDefinition{
					Name:        def.Name,
					Description: def.Description,
					Parameters:  def.JSONSchema(),
				},
			})
		}
		choice := req.ToolChoice
		if choice == "" {
			choice = ToolChoiceAuto
		}
		apiReq.ToolChoice = string(choice)
	}

	resp, err := o.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, translateOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	log.Printf("[gateway] completion model=%s finish=%s tool_calls=%d", o.model, resp.Choices[0].FinishReason, len(msg.ToolCalls))
	return fromOpenAIMessage(msg), nil
}

func translateOpenAIError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		log.Printf("[gateway] AI gateway error: %d %s", apiErr.HTTPStatusCode, apiErr.Message)
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	// non-JSON error bodies arrive as RequestError with the raw body
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		log.Printf("[gateway] AI gateway error: %d %s", reqErr.HTTPStatusCode, reqErr.Body)
		return classifyStatus(reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	return fmt.Errorf("AI gateway request failed: %w", err)
}

func toOpenAIMessages(messages []*schema.Message) []goopenai.ChatCompletionMessage {
	// tool messages must carry the function name of the call they answer
	callNames := make(map[string]string)

	out := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		msg := goopenai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
		switch m.Role {
		case schema.Assistant:
			for _, tc := range m.ToolCalls {
				callNames[tc.ID] = tc.Function.Name
				msg.ToolCalls = append(msg.ToolCalls, goopenai.ToolCall{
					ID:   tc.ID,
					Type: goopenai.ToolTypeFunction,
					Function: goopenai.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
		case schema.Tool:
			msg.ToolCallID = m.ToolCallID
			msg.Name = callNames[m.ToolCallID]
		}
		out = append(out, msg)
	}
	return out
}

func fromOpenAIMessage(m goopenai.ChatCompletionMessage) *schema.Message {
	var calls []schema.ToolCall
	for i, tc := range m.ToolCalls {
		index := i
		calls = append(calls, schema.ToolCall{
			Index: &index,
			ID:    tc.ID,
			Type:  string(tc.Type),
			Function: schema.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return schema.AssistantMessage(m.Content, calls)
}
