package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sales-analyst/backend/internal/config"
	personaModel "github.com/zhouzirui/sales-analyst/backend/internal/model/persona"
	"github.com/zhouzirui/sales-analyst/backend/internal/model/sales"
	"github.com/zhouzirui/sales-analyst/backend/internal/render"
	aiService "github.com/zhouzirui/sales-analyst/backend/internal/service/ai"
	chatService "github.com/zhouzirui/sales-analyst/backend/internal/service/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/gateway"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/tools"
)

// toolThenAnswer asks for the price tool on the first call and answers on the second.
type toolThenAnswer struct {
	calls int
}

func (g *toolThenAnswer) Complete(_ context.Context, req gateway.Request) (*schema.Message, error) {
	g.calls++
	if len(req.Tools) > 0 {
		return schema.AssistantMessage("", []schema.ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: schema.FunctionCall{Name: "query_mongodb_products", Arguments: `{"product_identifier":"SKU123","field":"price"}`},
		}}), nil
	}
	last := req.Messages[len(req.Messages)-1]
	return schema.AssistantMessage("Price lookup: "+last.Content, nil), nil
}

func newDeps(t *testing.T, gw gateway.Gateway) Deps {
	t.Helper()

	store := personaModel.NewMemoryStore(personaModel.Seed())
	deps := Deps{
		Server:   config.ServerConfig{AllowOrigin: "*"},
		Personas: store,
		Sessions: chatService.NewService(),
		Renderer: render.NewMarkdown(),
		Assets: fstest.MapFS{
			"static/index.html": {Data: []byte("<title>Sales Analysis AI</title>")},
		},
	}
	if gw == nil {
		return deps
	}

	fixtures, err := sales.DefaultFixtures()
	if err != nil {
		t.Fatalf("DefaultFixtures err: %v", err)
	}
	path := filepath.Join(t.TempDir(), "details.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("WriteFile err: %v", err)
	}
	p, _ := store.FindByID(personaModel.SalesAnalystID)
	deps.Analyst = aiService.NewAnalyst(gw, tools.NewSalesRegistry(fixtures, path), p)
	return deps
}

func TestHealthzReportsGateway(t *testing.T) {
	for _, tc := range []struct {
		name string
		gw   gateway.Gateway
		want bool
	}{
		{name: "configured", gw: &toolThenAnswer{}, want: true},
		{name: "missing", gw: nil, want: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			NewRouter(newDeps(t, tc.gw)).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			var body map[string]any
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode err: %v", err)
			}
			if body["status"] != "ok" || body["gateway"] != tc.want {
				t.Fatalf("unexpected health %v", body)
			}
		})
	}
}

func TestSalesChatWithoutGateway(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/sales-chat", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	resp := httptest.NewRecorder()
	NewRouter(newDeps(t, nil)).ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestSalesChatRoundTrip(t *testing.T) {
	gw := &toolThenAnswer{}
	req := httptest.NewRequest(http.MethodPost, "/api/sales-chat", strings.NewReader(`{"messages":[{"role":"user","content":"What is the price of SKU123?"}]}`))
	resp := httptest.NewRecorder()
	NewRouter(newDeps(t, gw)).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !strings.Contains(body["response"], `"price":99.99`) {
		t.Fatalf("tool output not forwarded: %q", body["response"])
	}
	if gw.calls != 2 {
		t.Fatalf("expected 2 gateway calls, got %d", gw.calls)
	}
}

func TestPreflight(t *testing.T) {
	resp := httptest.NewRecorder()
	NewRouter(newDeps(t, nil)).ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/api/sales-chat", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestIndexAndPersonaRoutes(t *testing.T) {
	router := NewRouter(newDeps(t, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Sales Analysis AI") {
		t.Fatalf("unexpected index %d %q", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/personas/"+personaModel.SalesAnalystID, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected persona 200, got %d", resp.Code)
	}
}
