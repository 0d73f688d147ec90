// Package gateway talks to the hosted LLM completion endpoint.
//
// Two backends are supported: any OpenAI-compatible chat completions API
// (the default, via go-openai) and Volcengine Ark (via eino-ext). Both speak
// eino schema messages so the analyst service stays backend-agnostic.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sales-analyst/backend/internal/config"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/tools"
)

var (
	// ErrRateLimited is returned when the gateway answers HTTP 429.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrPaymentRequired is returned when the gateway answers HTTP 402.
	ErrPaymentRequired = errors.New("payment required")
	// ErrEmptyResponse is returned when a completion carries no choices.
	ErrEmptyResponse = errors.New("gateway returned no choices")
)

// StatusError reports any other non-2xx gateway answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("AI gateway error: %d", e.Code)
}

// classifyStatus turns an HTTP status into the package's error vocabulary.
func classifyStatus(code int, body string) error {
	switch code {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusPaymentRequired:
		return ErrPaymentRequired
	default:
		return &StatusError{Code: code, Body: body}
	}
}

// ToolChoice controls whether the model may call tools.
type ToolChoice string

const (
	ToolChoiceAuto ToolChoice = "auto"
	ToolChoiceNone ToolChoice = "none"
)

// Request is a single chat completion call.
type Request struct {
	Messages   []*schema.Message
	Tools      []tools.Definition
	ToolChoice ToolChoice
}

// Gateway produces one assistant message per request.
type Gateway interface {
	Complete(ctx context.Context, req Request) (*schema.Message, error)
}

// New builds the gateway selected by cfg.Provider. defs is the tool set the
// gateway will be asked to advertise; Ark binds it up front.
func New(ctx context.Context, cfg config.GatewayConfig, defs []tools.Definition) (Gateway, error) {
	if !cfg.Enabled() {
		return nil, errors.New(cfg.MissingReason())
	}

	switch cfg.Provider {
	case config.ProviderArk:
		return NewArk(ctx, cfg.Ark, defs)
	case config.ProviderOpenAI, "":
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
