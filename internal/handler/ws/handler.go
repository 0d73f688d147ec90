package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatHandler "github.com/zhouzirui/sales-analyst/backend/internal/handler/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/handler/httperr"
	"github.com/zhouzirui/sales-analyst/backend/internal/model/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/model/persona"
	"github.com/zhouzirui/sales-analyst/backend/internal/render"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/sales-analyst/backend/internal/service/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/tools"
	"github.com/zhouzirui/sales-analyst/backend/pkg/utils"
)

const (
	maxMessageBytes = 64 << 10
	writeTimeout    = 10 * time.Second
)

// Handler WebSocket对话处理器。每个连接对应一个服务端会话，断开即丢弃。
type Handler struct {
	analyst  chatHandler.Replier
	sessions *chatservice.Service
	persona  persona.Persona
	renderer *render.Markdown
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器
func New(analyst chatHandler.Replier, sessions *chatservice.Service, p persona.Persona, renderer *render.Markdown) *Handler {
	return &Handler{
		analyst:  analyst,
		sessions: sessions,
		persona:  p,
		renderer: renderer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type outgoingMessage struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId,omitempty"`
	Role      chat.Role     `json:"role,omitempty"`
	Content   string        `json:"content,omitempty"`
	HTML      string        `json:"html,omitempty"`
	Tool      *tools.Result `json:"tool,omitempty"`
	Error     string        `json:"error,omitempty"`
	Status    int           `json:"status,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.analyst == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, httperr.GatewayUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	ctx := r.Context()
	session, err := h.sessions.CreateSession(ctx, h.persona.ID)
	if err != nil {
		log.Printf("[ws] failed to create session: %v", err)
		return
	}
	defer h.sessions.EndSession(context.Background(), session.ID)
	log.Printf("[ws] session=%s opened", session.ID)

	greeting := chat.Message{Role: chat.RoleAssistant, Content: h.persona.OpeningLine}
	if _, err := h.sessions.AppendMessage(ctx, session.ID, greeting); err != nil {
		log.Printf("[ws] failed to record greeting: %v", err)
		return
	}
	if err := h.send(conn, h.assistantFrame(session.ID, greeting.Content)); err != nil {
		return
	}

	for {
		var in inboundMessage
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] session=%s read error: %v", session.ID, err)
			}
			log.Printf("[ws] session=%s closed", session.ID)
			return
		}

		var turnErr error
		switch in.Type {
		case "message":
			turnErr = h.handleTurn(ctx, conn, session.ID, in.Content)
		case "ping":
			turnErr = h.send(conn, outgoingMessage{Type: "pong", SessionID: session.ID})
		default:
			turnErr = h.sendError(conn, session.ID, http.StatusBadRequest, "unknown message type: "+in.Type)
		}
		if turnErr != nil {
			log.Printf("[ws] session=%s write failed: %v", session.ID, turnErr)
			return
		}
	}
}

// handleTurn records the user message, asks the analyst and records the answer.
// Only write failures are returned; analyst failures are reported to the client.
func (h *Handler) handleTurn(ctx context.Context, conn *websocket.Conn, sessionID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return h.sendError(conn, sessionID, http.StatusBadRequest, "content is required")
	}

	if _, err := h.sessions.AppendMessage(ctx, sessionID, chat.Message{Role: chat.RoleUser, Content: content}); err != nil {
		return h.sendError(conn, sessionID, http.StatusInternalServerError, err.Error())
	}
	if err := h.send(conn, outgoingMessage{Type: "typing", SessionID: sessionID}); err != nil {
		return err
	}

	transcript, err := h.sessions.LoadTranscript(ctx, sessionID)
	if err != nil {
		return h.sendError(conn, sessionID, http.StatusInternalServerError, err.Error())
	}

	var writeErr error
	onTool := func(res tools.Result) {
		if writeErr == nil {
			writeErr = h.send(conn, outgoingMessage{Type: "tool", SessionID: sessionID, Tool: &res})
		}
	}

	reply, err := h.analyst.Reply(ctx, transcript, ai.WithToolObserver(onTool))
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		log.Printf("[ws] session=%s reply failed: %v", sessionID, err)
		status, msg := httperr.Status(err)
		return h.sendError(conn, sessionID, status, msg)
	}

	if strings.TrimSpace(reply.Content) != "" {
		if _, err := h.sessions.AppendMessage(ctx, sessionID, chat.Message{Role: chat.RoleAssistant, Content: reply.Content}); err != nil && !errors.Is(err, chatservice.ErrSessionNotFound) {
			log.Printf("[ws] session=%s failed to record reply: %v", sessionID, err)
		}
	}
	return h.send(conn, h.assistantFrame(sessionID, reply.Content))
}

func (h *Handler) assistantFrame(sessionID, content string) outgoingMessage {
	resp := chatHandler.NewResponse(h.renderer, content)
	return outgoingMessage{
		Type:      "message",
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   resp.Response,
		HTML:      resp.HTML,
	}
}

func (h *Handler) sendError(conn *websocket.Conn, sessionID string, status int, msg string) error {
	return h.send(conn, outgoingMessage{Type: "error", SessionID: sessionID, Error: msg, Status: status})
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) error {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
