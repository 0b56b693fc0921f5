package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	aeromail "github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/config"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/handler"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/repository"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/service"
)

func main() {
	// Load configuration first so the log level can honor it.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(aeromail.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	convRepo := repository.NewConversationRepo(pool)
	msgRepo := repository.NewMessageRepo(pool)
	prefRepo := repository.NewPreferenceRepo(pool)
	contentRepo := repository.NewContentRepo(pool)

	// Model providers. OpenRouter is the default and the fallback target;
	// the others are optional direct routes.
	providers := []service.Provider{
		service.NewHTTPProvider(service.ProviderOpenRouter, cfg.OpenRouterKey, cfg.OpenRouterURL),
	}
	if cfg.GroqKey != "" {
		providers = append(providers, service.NewHTTPProvider("groq", cfg.GroqKey, cfg.GroqURL))
	}
	if cfg.DeepInfraKey != "" {
		providers = append(providers, service.NewHTTPProvider("deepinfra", cfg.DeepInfraKey, cfg.DeepInfraURL))
	}

	// Services
	gateway := service.NewGateway(cfg.DefaultModel, providers...)
	catalog := service.NewCatalog(cfg.OpenRouterKey, cfg.OpenRouterURL)
	conversations := service.NewConversationService(convRepo, msgRepo, prefRepo, gateway.DefaultModel())
	content := service.NewContentService(contentRepo)
	dispatcher := service.NewDispatcher()
	content.RegisterActions(dispatcher)
	controller := service.NewChatController(conversations, gateway, service.NewComposer(), dispatcher)

	// Handler + routes
	h := handler.New(handler.Deps{
		Cfg:           cfg,
		Controller:    controller,
		Conversations: conversations,
		Content:       content,
		Catalog:       catalog,
		Gateway:       gateway,
	})

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	h.Register(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	go func() {
		slog.Info("starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}

	slog.Info("server stopped gracefully")
}
