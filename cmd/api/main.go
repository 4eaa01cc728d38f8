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

	"github.com/heva-hub/assistant/backend/internal/analysis/response"
	"github.com/heva-hub/assistant/backend/internal/config"
	"github.com/heva-hub/assistant/backend/internal/handler"
	"github.com/heva-hub/assistant/backend/internal/model/assistant"
	"github.com/heva-hub/assistant/backend/internal/model/opportunity"
	"github.com/heva-hub/assistant/backend/internal/model/settings"
	"github.com/heva-hub/assistant/backend/internal/service/chat"
	"github.com/heva-hub/assistant/backend/internal/service/dashboard"
	"github.com/heva-hub/assistant/backend/internal/service/export"
	"github.com/heva-hub/assistant/backend/internal/service/reply"
	settingsservice "github.com/heva-hub/assistant/backend/internal/service/settings"
	"github.com/heva-hub/assistant/backend/internal/service/voice"
	"github.com/joho/godotenv"
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

	engine, err := loadEngine(cfg.Chat.RulesFile)
	if err != nil {
		log.Fatalf("failed to load response rules: %v", err)
	}

	replies, err := reply.NewService(ctx, engine)
	if err != nil {
		log.Fatalf("failed to initialize reply service: %v", err)
	}
	log.Printf("reply service ready with %d rules", len(engine.Rules()))

	profile := assistant.Default().WithName(cfg.Chat.AssistantName)
	greeting := ""
	if cfg.Chat.GreetingEnabled {
		greeting = profile.OpeningLine
	}

	chatService := chat.NewService(replies, chat.Options{
		ReplyDelay:  cfg.Chat.ReplyDelay,
		Greeting:    greeting,
		EventBuffer: cfg.Chat.EventBuffer,
	})
	defer chatService.Close()

	voiceService := voice.NewService(chatService, voice.Options{
		CaptureDelay: cfg.Voice.CaptureDelay,
		Utterance:    cfg.Voice.SampleUtterance,
	})
	defer voiceService.Close()

	router := handler.NewRouter(handler.Dependencies{
		Profile:       profile,
		Replies:       replies,
		Chat:          chatService,
		Voice:         voiceService,
		Exporter:      export.New(profile.Name, cfg.Chat.Location),
		Opportunities: opportunity.NewMemoryStore(opportunity.Seed()),
		Settings:      settingsservice.NewService(settings.Default()),
		Dashboard:     dashboard.NewService(replies),
	})

	// open event streams end when the chat service closes
	startServer(ctx, cfg.Server, router, voiceService.Close, chatService.Close)
}

func loadEngine(rulesFile string) (*response.Engine, error) {
	if rulesFile == "" {
		return response.Default(), nil
	}
	rules, err := response.LoadRules(rulesFile)
	if err != nil {
		return nil, err
	}
	log.Printf("using response rules from %s", rulesFile)
	return response.NewEngine(rules)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, onShutdown ...func()) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	for _, fn := range onShutdown {
		srv.RegisterOnShutdown(fn)
	}

	log.Printf("HEVA assistant backend listening on %s", addr)
	if err := runServer(ctx, srv, serverCfg.ShutdownTimeout); err != nil {
		log.Printf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
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
