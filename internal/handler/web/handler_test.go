package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	assets := fstest.MapFS{
		"static/index.html": {Data: []byte("<h1>Sales Analysis AI</h1>")},
		"static/app.js":     {Data: []byte("console.log('ok')")},
	}
	h, err := New(assets)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestIndex(t *testing.T) {
	resp := httptest.NewRecorder()
	setupRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(resp.Body.String(), "Sales Analysis AI") {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

func TestStaticAsset(t *testing.T) {
	resp := httptest.NewRecorder()
	setupRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "console.log") {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

func TestStaticMissing(t *testing.T) {
	resp := httptest.NewRecorder()
	setupRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/static/nope.css", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
