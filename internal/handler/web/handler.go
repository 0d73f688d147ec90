package web

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler 提供内嵌的聊天页面与静态资源
type Handler struct {
	static fs.FS
	files  http.Handler
}

// New 以 web/static 目录为根创建处理器
func New(assets fs.FS) (*Handler, error) {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}
	return &Handler{
		static: static,
		files:  http.StripPrefix("/static/", http.FileServer(http.FS(static))),
	}, nil
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/static/*", h.files.ServeHTTP)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(h.static, "index.html")
	if err != nil {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(page)
}
