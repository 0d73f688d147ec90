// Package httperr maps service errors onto HTTP status codes and client messages.
package httperr

import (
	"context"
	"errors"
	"net/http"

	"github.com/zhouzirui/sales-analyst/backend/internal/model/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/gateway"
)

// GatewayUnavailable is the message sent when no LLM gateway is configured.
const GatewayUnavailable = "AI gateway is not configured"

// Status returns the HTTP status and the message shown to the client for err.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrInvalidHistory):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, gateway.ErrRateLimited):
		return http.StatusTooManyRequests, "Rate limit exceeded"
	case errors.Is(err, gateway.ErrPaymentRequired):
		return http.StatusPaymentRequired, "Payment required"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "AI gateway timed out"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
