package chat_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	model "github.com/zhouzirui/sales-analyst/backend/internal/model/chat"
	chat "github.com/zhouzirui/sales-analyst/backend/internal/service/chat"
)

func TestServiceGetSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "sales-analyst")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}
	if got.PersonaID != "sales-analyst" {
		t.Fatalf("unexpected persona ID: got %s", got.PersonaID)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestServiceCreateSessionRequiresPersona(t *testing.T) {
	if _, err := chat.NewService().CreateSession(context.Background(), ""); !errors.Is(err, chat.ErrPersonaRequired) {
		t.Fatalf("expected ErrPersonaRequired, got %v", err)
	}
}

func TestServiceTranscriptOrderAndCopy(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "sales-analyst")

	turns := []model.Message{
		{Role: model.RoleAssistant, Content: "Hello!"},
		{Role: model.RoleUser, Content: "How many sales yesterday?"},
		{Role: model.RoleAssistant, Content: "42."},
	}
	for _, m := range turns {
		if _, err := svc.AppendMessage(ctx, session.ID, m); err != nil {
			t.Fatalf("AppendMessage err: %v", err)
		}
	}

	got, err := svc.LoadTranscript(ctx, session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(got) != len(turns) {
		t.Fatalf("expected %d messages, got %d", len(turns), len(got))
	}
	for i := range turns {
		if got[i] != turns[i] {
			t.Fatalf("message %d: got %+v want %+v", i, got[i], turns[i])
		}
	}

	got[0].Content = "mutated"
	again, _ := svc.LoadTranscript(ctx, session.ID)
	if again[0].Content != "Hello!" {
		t.Fatal("LoadTranscript must return a copy")
	}
}

func TestServiceEndSessionDiscardsTranscript(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "sales-analyst")

	svc.EndSession(ctx, session.ID)

	if svc.ActiveSessions() != 0 {
		t.Fatalf("expected no active sessions, got %d", svc.ActiveSessions())
	}
	if _, err := svc.LoadTranscript(ctx, session.ID); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.AppendMessage(ctx, session.ID, model.Message{Role: model.RoleUser, Content: "hi"}); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestServiceConcurrentAppends(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "sales-analyst")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AppendMessage(ctx, session.ID, model.Message{Role: model.RoleUser, Content: "ping"})
		}()
	}
	wg.Wait()

	got, _ := svc.LoadTranscript(ctx, session.ID)
	if len(got) != 50 {
		t.Fatalf("expected 50 messages, got %d", len(got))
	}
}
