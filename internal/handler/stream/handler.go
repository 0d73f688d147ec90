package stream

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	chatHandler "github.com/zhouzirui/sales-analyst/backend/internal/handler/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/handler/httperr"
	"github.com/zhouzirui/sales-analyst/backend/internal/model/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/render"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/ai"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/tools"
	"github.com/zhouzirui/sales-analyst/backend/pkg/utils"
)

// Handler streams the progress of a sales-chat turn via Server-Sent Events.
type Handler struct {
	analyst  chatHandler.Replier
	renderer *render.Markdown
}

// New creates a new stream handler.
func New(analyst chatHandler.Replier, renderer *render.Markdown) *Handler {
	return &Handler{
		analyst:  analyst,
		renderer: renderer,
	}
}

// Event payloads, one per SSE event type.
type (
	StartEvent struct {
		RequestID string `json:"requestId"`
	}
	ToolEvent struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
		Result    string `json:"result"`
		Failed    bool   `json:"failed,omitempty"`
	}
	ErrorEvent struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}
	EndEvent struct {
		Finished bool `json:"finished"`
	}
)

// RegisterRoutes 注册流式聊天路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sales-chat/stream", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if h.analyst == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, httperr.GatewayUnavailable)
		return
	}

	var payload chatHandler.Request
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := chat.Validate(payload.Messages); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}

	if err := h.stream(r.Context(), w, flusher, requestID, payload.Messages); err != nil {
		log.Printf("[stream] request=%s aborted: %v", requestID, err)
	}
}

// stream runs one turn, emitting start, tool*, message|error and end events.
func (h *Handler) stream(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, requestID string, history []chat.Message) error {
	if err := utils.SendSSEEvent(w, flusher, "start", StartEvent{RequestID: requestID}); err != nil {
		return err
	}

	var writeErr error
	onTool := func(res tools.Result) {
		if writeErr != nil {
			return
		}
		writeErr = utils.SendSSEEvent(w, flusher, "tool", ToolEvent{
			Name:      res.Name,
			Arguments: res.Arguments,
			Result:    res.Content,
			Failed:    res.Failed,
		})
	}

	reply, err := h.analyst.Reply(ctx, history, ai.WithToolObserver(onTool))
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		log.Printf("[stream] request=%s error: %v", requestID, err)
		status, msg := httperr.Status(err)
		if sendErr := utils.SendSSEEvent(w, flusher, "error", ErrorEvent{Error: msg, Status: status}); sendErr != nil {
			return sendErr
		}
	} else {
		if err := utils.SendSSEEvent(w, flusher, "message", chatHandler.NewResponse(h.renderer, reply.Content)); err != nil {
			return err
		}
	}

	log.Printf("[stream] completed request=%s tools=%d", requestID, len(reply.ToolRuns))
	return utils.SendSSEEvent(w, flusher, "end", EndEvent{Finished: true})
}
