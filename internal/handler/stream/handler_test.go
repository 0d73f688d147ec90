package stream

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/sales-analyst/backend/internal/model/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/render"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/ai"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/gateway"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/tools"
)

// toolingAnalyst reports the scripted tool runs through the observer before replying.
type toolingAnalyst struct {
	runs  []tools.Result
	reply string
	err   error
}

func (f *toolingAnalyst) Reply(_ context.Context, _ []chat.Message, opts ...ai.ReplyOption) (ai.Reply, error) {
	o := ai.ApplyReplyOptions(opts...)
	for _, r := range f.runs {
		if o.OnTool != nil {
			o.OnTool(r)
		}
	}
	if f.err != nil {
		return ai.Reply{}, f.err
	}
	return ai.Reply{Content: f.reply, ToolRuns: f.runs}, nil
}

func serve(t *testing.T, analyst *toolingAnalyst, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	New(analyst, render.NewMarkdown()).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/sales-chat/stream", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func eventNames(body string) []string {
	var names []string
	for _, line := range strings.Split(body, "\n") {
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			names = append(names, name)
		}
	}
	return names
}

const validBody = `{"messages":[{"role":"user","content":"How many sales did we make yesterday?"}]}`

func TestStreamEmitsToolAndMessageEvents(t *testing.T) {
	analyst := &toolingAnalyst{
		runs:  []tools.Result{{CallID: "call_1", Name: "query_mongodb_sales", Arguments: `{"query_type":"count"}`, Content: `{"count":42,"period":"yesterday"}`}},
		reply: "We made 42 sales yesterday.",
	}
	resp := serve(t, analyst, validBody)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	got := strings.Join(eventNames(resp.Body.String()), ",")
	if got != "start,tool,message,end" {
		t.Fatalf("unexpected event sequence %q", got)
	}
	if !strings.Contains(resp.Body.String(), `"name":"query_mongodb_sales"`) {
		t.Fatalf("tool event missing tool name: %s", resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"response":"We made 42 sales yesterday."`) {
		t.Fatalf("message event missing reply: %s", resp.Body.String())
	}
}

func TestStreamReportsGatewayErrors(t *testing.T) {
	resp := serve(t, &toolingAnalyst{err: gateway.ErrRateLimited}, validBody)

	got := strings.Join(eventNames(resp.Body.String()), ",")
	if got != "start,error,end" {
		t.Fatalf("unexpected event sequence %q", got)
	}
	if !strings.Contains(resp.Body.String(), `"status":429`) {
		t.Fatalf("error event missing status: %s", resp.Body.String())
	}
}

func TestStreamRejectsInvalidBody(t *testing.T) {
	resp := serve(t, &toolingAnalyst{}, `{"messages":[]}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("validation errors must be plain JSON, got %q", ct)
	}
}
