// Package ai runs the sales analyst conversation against the LLM gateway.
package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sales-analyst/backend/internal/model/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/model/persona"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/gateway"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/tools"
)

// Reply is the outcome of one user turn.
type Reply struct {
	Content  string
	ToolRuns []tools.Result
}

// ReplyOptions collects the per-call settings of Reply.
type ReplyOptions struct {
	OnTool func(tools.Result)
}

// ReplyOption customises a single Reply call.
type ReplyOption func(*ReplyOptions)

// ApplyReplyOptions folds opts into a ReplyOptions value.
func ApplyReplyOptions(opts ...ReplyOption) ReplyOptions {
	var o ReplyOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithToolObserver registers a callback invoked after each tool call completes,
// in the order the model requested them.
func WithToolObserver(fn func(tools.Result)) ReplyOption {
	return func(o *ReplyOptions) {
		o.OnTool = fn
	}
}

// Analyst answers sales questions, letting the model consult the tool registry once.
type Analyst struct {
	gateway  gateway.Gateway
	tools    *tools.Registry
	persona  persona.Persona
	template prompt.ChatTemplate
}

// NewAnalyst binds a gateway, the tool registry and the persona whose system prompt is used.
func NewAnalyst(gw gateway.Gateway, registry *tools.Registry, p persona.Persona) *Analyst {
	return &Analyst{
		gateway:  gw,
		tools:    registry,
		persona:  p,
		template: newPromptTemplate(),
	}
}

// Persona returns the persona the analyst speaks as.
func (a *Analyst) Persona() persona.Persona {
	return a.persona
}

// Reply produces the assistant answer for the conversation so far.
//
// The first completion advertises every tool with tool_choice "auto". When the
// model answers with tool calls they run sequentially, and a second completion
// without tools turns the results into the final text.
func (a *Analyst) Reply(ctx context.Context, history []chat.Message, opts ...ReplyOption) (Reply, error) {
	if err := chat.Validate(history); err != nil {
		return Reply{}, err
	}

	o := ApplyReplyOptions(opts...)

	msgs, err := a.buildMessages(ctx, history)
	if err != nil {
		return Reply{}, err
	}
	log.Printf("[ai] received messages: %d", len(history))

	first, err := a.gateway.Complete(ctx, gateway.Request{
		Messages:   msgs,
		Tools:      a.tools.Definitions(),
		ToolChoice: gateway.ToolChoiceAuto,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to get completion: %w", err)
	}

	if len(first.ToolCalls) == 0 {
		log.Printf("[ai] direct response, length=%d", len(first.Content))
		return Reply{Content: first.Content}, nil
	}

	if first.Role == "" {
		first.Role = schema.Assistant
	}

	followUp := make([]*schema.Message, 0, len(msgs)+1+len(first.ToolCalls))
	followUp = append(followUp, msgs...)
	followUp = append(followUp, first)

	runs := make([]tools.Result, 0, len(first.ToolCalls))
	for _, call := range first.ToolCalls {
		res := a.tools.Run(ctx, call)
		runs = append(runs, res)
		if o.OnTool != nil {
			o.OnTool(res)
		}
		followUp = append(followUp, schema.ToolMessage(res.Content, call.ID))
	}

	final, err := a.gateway.Complete(ctx, gateway.Request{Messages: followUp})
	if err != nil {
		return Reply{}, fmt.Errorf("final completion failed: %w", err)
	}

	log.Printf("[ai] response after %d tool call(s), length=%d", len(runs), len(final.Content))
	return Reply{Content: final.Content, ToolRuns: runs}, nil
}
