package chat

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/sales-analyst/backend/internal/handler/httperr"
	"github.com/zhouzirui/sales-analyst/backend/internal/model/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/render"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/ai"
	"github.com/zhouzirui/sales-analyst/backend/pkg/utils"
)

// Replier produces the analyst answer for a conversation.
type Replier interface {
	Reply(ctx context.Context, history []chat.Message, opts ...ai.ReplyOption) (ai.Reply, error)
}

// Handler 销售分析对话的HTTP处理器
type Handler struct {
	analyst  Replier
	renderer *render.Markdown
}

// New 创建聊天处理器。analyst 为 nil 时接口返回 503。
func New(analyst Replier, renderer *render.Markdown) *Handler {
	return &Handler{
		analyst:  analyst,
		renderer: renderer,
	}
}

// Request is the body accepted by the chat endpoints.
type Request struct {
	Messages []chat.Message `json:"messages"`
}

// Response carries the final assistant text and its rendered form.
type Response struct {
	Response string `json:"response"`
	HTML     string `json:"html,omitempty"`
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sales-chat", h.handleSalesChat)
}

// handleSalesChat 处理一次完整的问答往返
func (h *Handler) handleSalesChat(w http.ResponseWriter, r *http.Request) {
	if h.analyst == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, httperr.GatewayUnavailable)
		return
	}

	var payload Request
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := chat.Validate(payload.Messages); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.analyst.Reply(r.Context(), payload.Messages)
	if err != nil {
		log.Printf("[chat] error in sales-chat: %v", err)
		status, msg := httperr.Status(err)
		utils.RespondError(w, status, msg)
		return
	}

	utils.RespondJSON(w, http.StatusOK, NewResponse(h.renderer, reply.Content))
}

// NewResponse pairs the reply with its HTML rendering. Rendering failures
// only drop the HTML field.
func NewResponse(renderer *render.Markdown, content string) Response {
	resp := Response{Response: content}
	if renderer == nil || content == "" {
		return resp
	}

	html, err := renderer.Render(content)
	if err != nil {
		log.Printf("[chat] failed to render reply: %v", err)
		return resp
	}
	resp.HTML = html
	return resp
}
