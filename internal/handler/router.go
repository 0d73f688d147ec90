package handler

import (
	"io/fs"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/sales-analyst/backend/internal/config"
	"github.com/zhouzirui/sales-analyst/backend/internal/handler/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/handler/persona"
	"github.com/zhouzirui/sales-analyst/backend/internal/handler/stream"
	"github.com/zhouzirui/sales-analyst/backend/internal/handler/web"
	"github.com/zhouzirui/sales-analyst/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/sales-analyst/backend/internal/middleware"
	personaModel "github.com/zhouzirui/sales-analyst/backend/internal/model/persona"
	"github.com/zhouzirui/sales-analyst/backend/internal/render"
	aiService "github.com/zhouzirui/sales-analyst/backend/internal/service/ai"
	chatService "github.com/zhouzirui/sales-analyst/backend/internal/service/chat"
	"github.com/zhouzirui/sales-analyst/backend/pkg/utils"
)

// Deps 汇总路由需要的服务。Analyst 为 nil 表示网关未配置。
type Deps struct {
	Server   config.ServerConfig
	Personas personaModel.Store
	Analyst  *aiService.Analyst
	Sessions *chatService.Service
	Renderer *render.Markdown
	Assets   fs.FS
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.Server.AllowOrigin))

	// 避免把 nil 指针包装成非 nil 接口
	var analyst chat.Replier
	analystPersona, _ := deps.Personas.FindByID(personaModel.SalesAnalystID)
	if deps.Analyst != nil {
		analyst = deps.Analyst
		analystPersona = deps.Analyst.Persona()
	}

	personaHandler := persona.New(deps.Personas)
	chatHandler := chat.New(analyst, deps.Renderer)
	streamHandler := stream.New(analyst, deps.Renderer)
	wsHandler := ws.New(analyst, deps.Sessions, analystPersona, deps.Renderer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"gateway": analyst != nil,
		})
	})

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	if deps.Assets != nil {
		webHandler, err := web.New(deps.Assets)
		if err != nil {
			log.Printf("[web] static assets unavailable: %v", err)
		} else {
			webHandler.RegisterRoutes(r)
		}
	}

	return r
}
