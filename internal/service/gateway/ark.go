package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"github.com/zhouzirui/sales-analyst/backend/internal/config"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/tools"
)

// toolBinder is the part of *ark.ChatModel that Ark relies on.
type toolBinder interface {
	model.BaseChatModel
	BindTools(tools []*schema.ToolInfo) error
}

var _ toolBinder = (*ark.ChatModel)(nil)

// Ark calls a Volcengine Ark model through eino.
//
// BindTools mutates the model, so tools are bound once at construction on a
// dedicated instance and tool-less completions go to a second one.
type Ark struct {
	plain  model.BaseChatModel
	tooled model.BaseChatModel
}

// NewArk 使用 Ark 配置创建两个模型实例，并为其中一个绑定工具。
func NewArk(ctx context.Context, c config.ArkConfig, defs []tools.Definition) (*Ark, error) {
	plain, err := ark.NewChatModel(ctx, newArkModelConfig(c))
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}

	tooled, err := ark.NewChatModel(ctx, newArkModelConfig(c))
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}

	return NewArkWithModels(plain, tooled, defs)
}

// newArkModelConfig 每次返回新的配置，ark.NewChatModel 会就地补全默认值。
func newArkModelConfig(c config.ArkConfig) *ark.ChatModelConfig {
	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	return &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
		RetryTimes:  c.RetryTimes,
	}
}

// NewArkWithModels binds defs to tooled and keeps plain for tool-less calls.
func NewArkWithModels(plain model.BaseChatModel, tooled toolBinder, defs []tools.Definition) (*Ark, error) {
	infos := make([]*schema.ToolInfo, 0, len(defs))
	for _, def := range defs {
		infos = append(infos, def.ToolInfo())
	}
	if err := tooled.BindTools(infos); err != nil {
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}

	return &Ark{plain: plain, tooled: tooled}, nil
}

// Complete generates one message. Requests that advertise tools use the model
// whose tool set was bound at construction.
func (a *Ark) Complete(ctx context.Context, req Request) (*schema.Message, error) {
	m := a.plain
	if len(req.Tools) > 0 && req.ToolChoice != ToolChoiceNone {
		m = a.tooled
	}

	msg, err := m.Generate(ctx, req.Messages)
	if err != nil {
		return nil, translateArkError(err)
	}
	if msg == nil {
		return nil, ErrEmptyResponse
	}

	log.Printf("[gateway] ark completion tool_calls=%d", len(msg.ToolCalls))
	return msg, nil
}

func translateArkError(err error) error {
	// transport failures surface as RequestError 500; keep context errors intact
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("AI gateway request failed: %w", err)
	}

	var apiErr *arkmodel.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		log.Printf("[gateway] AI gateway error: %d %s", apiErr.HTTPStatusCode, apiErr.Message)
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *arkmodel.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		log.Printf("[gateway] AI gateway error: %d %v", reqErr.HTTPStatusCode, reqErr.Err)
		return classifyStatus(reqErr.HTTPStatusCode, reqErr.Error())
	}

	return fmt.Errorf("AI gateway request failed: %w", err)
}
