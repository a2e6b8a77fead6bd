package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"samosa-vision/config"
	"samosa-vision/internal/api/telegram"
	"samosa-vision/internal/api/web"
	app "samosa-vision/internal/application"
	"samosa-vision/internal/container"
	"samosa-vision/internal/domain/port"
	"samosa-vision/internal/infrastructure/inference"
	"samosa-vision/internal/infrastructure/storage"
	"samosa-vision/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	prompt, err := config.LoadPrompt(cfg.PromptFile)
	if err != nil {
		log.Fatalf("Failed to load prompt: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Клиент провайдера создаётся один раз и дальше только передаётся
	analyzer, closeAnalyzer, err := newAnalyzer(ctx, cfg, prompt.Text)
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}
	defer closeAnalyzer()

	opts := container.Options{
		MaxImageBytes:  cfg.HTTP.MaxUploadBytes,
		RefusalMarkers: prompt.RefusalMarkers,
		Session: []app.SessionOption{
			app.WithCaptions(prompt.Captions),
			app.WithProgressInterval(cfg.Session.ProgressInterval),
			app.WithAnalyzeTimeout(cfg.Inference.AnalyzeTimeout),
		},
	}
	if cfg.ImageProbe {
		opts.Probe = vision.NewProbe(cfg.ImageMinSide)
	}

	// Создаём хранилище сессий и собираем сервисы приложения
	sessionRepo := storage.NewMemorySessionRepository()
	appContainer := container.New(sessionRepo, analyzer, opts)

	srv, err := web.New(cfg.HTTP, appContainer.Sessions)
	if err != nil {
		log.Fatalf("Failed to create web server: %v", err)
	}

	var wg sync.WaitGroup

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.Sessions)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bot.Run(ctx); err != nil {
				slog.Error("bot stopped", "error", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		pruneSessions(ctx, appContainer.Sessions, cfg.Session.TTL)
	}()

	slog.Info("samosa-vision is running", "provider", analyzer.Name())
	if err := srv.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}
	stop()
	wg.Wait()
}

func newAnalyzer(ctx context.Context, cfg *config.Config, prompt string) (port.Analyzer, func(), error) {
	switch cfg.Inference.Provider {
	case config.ProviderOpenAI:
		a, err := inference.NewOpenAI(&cfg.OpenAI, prompt)
		if err != nil {
			return nil, nil, err
		}
		return a, func() {}, nil
	default:
		a, err := inference.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, prompt)
		if err != nil {
			return nil, nil, err
		}
		return a, func() { _ = a.Close() }, nil
	}
}

// pruneSessions раз в ttl/2 удаляет простаивающие сессии
func pruneSessions(ctx context.Context, sessions *app.SessionService, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	t := time.NewTicker(ttl / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := sessions.PruneIdle(ctx, ttl)
			if err != nil {
				slog.Error("prune sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("pruned idle sessions", "count", n)
			}
		}
	}
}
