package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/sales-analyst/backend/internal/config"
	"github.com/zhouzirui/sales-analyst/backend/internal/handler"
	"github.com/zhouzirui/sales-analyst/backend/internal/model/persona"
	"github.com/zhouzirui/sales-analyst/backend/internal/model/sales"
	"github.com/zhouzirui/sales-analyst/backend/internal/render"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/ai"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/chat"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/gateway"
	"github.com/zhouzirui/sales-analyst/backend/internal/service/tools"
	"github.com/zhouzirui/sales-analyst/backend/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	analystPersona, ok := personaStore.FindByID(persona.SalesAnalystID)
	if !ok {
		log.Fatalf("persona %q missing from seed data", persona.SalesAnalystID)
	}

	fixtures, err := sales.DefaultFixtures()
	if err != nil {
		log.Fatalf("failed to load sales fixtures: %v", err)
	}
	registry := tools.NewSalesRegistry(fixtures, cfg.Tools.ProductDetailsPath)
	if _, err := os.Stat(cfg.Tools.ProductDetailsPath); err != nil {
		log.Printf("warning: product details file unavailable: %v", err)
	}

	// Initialize analyst; without a gateway the chat endpoints answer 503
	var analyst *ai.Analyst
	if cfg.Gateway.Enabled() {
		gw, err := gateway.New(ctx, cfg.Gateway, registry.Definitions())
		if err != nil {
			log.Printf("warning: failed to initialize AI gateway: %v", err)
			log.Println("continuing without AI functionality")
		} else {
			analyst = ai.NewAnalyst(gw, registry, analystPersona)
			log.Printf("AI gateway initialized (provider=%s)", cfg.Gateway.Provider)
		}
	} else {
		log.Printf("AI 网关未配置，跳过初始化: %s", cfg.Gateway.MissingReason())
	}

	router := handler.NewRouter(handler.Deps{
		Server:   cfg.Server,
		Personas: personaStore,
		Analyst:  analyst,
		Sessions: chat.NewService(),
		Renderer: render.NewMarkdown(),
		Assets:   web.StaticFS,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Sales analyst backend listening on %s", addr)
	if err := runServer(ctx, srv, serverCfg.ShutdownTimeout); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
