package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-blog-api/internal/config"
	"smart-blog-api/internal/database"
	"smart-blog-api/internal/genai"
	"smart-blog-api/internal/handler"
	"smart-blog-api/internal/middleware"
	"smart-blog-api/internal/repository"
	"smart-blog-api/internal/router"
	"smart-blog-api/internal/service"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Pool, cfg.DBQueryTimeout)
	postRepo := repository.NewPostRepository(db.Pool, cfg.DBQueryTimeout)
	slog.Info("database ready")

	creds, err := service.NewCredentialService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.BcryptCost)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize credential service: %w", err)
	}

	authService := service.NewAuthService(userRepo, creds)
	postService := service.NewPostService(postRepo)

	if !cfg.AIConfigured() {
		slog.Warn("GEMINI_API_KEY not set, AI generation requests will be rejected")
	}
	gemini := genai.NewGemini(genai.NewHTTPClient(30*time.Second), cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey)
	aiService := service.NewAIService(gemini, cfg.AIConfigured(), cfg.AIFallbackTimeout)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(creds), router.Handlers{
		System: handler.NewSystemHandler(db),
		Docs:   handler.NewDocsHandler(),
		Auth:   handler.NewAuthHandler(authService),
		Post:   handler.NewPostHandler(postService, authService),
		AI:     handler.NewAIHandler(aiService),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			db.Close,
		},
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests before
// releasing the database pool.
func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown requested", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, fn := range a.cleanupFuncs {
		fn()
	}
}
