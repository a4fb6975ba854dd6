package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"reviewgate/internal/config"
	"reviewgate/internal/domain/captcha"
	"reviewgate/internal/domain/review"
	"reviewgate/internal/infra/auth"
	captchainfra "reviewgate/internal/infra/captcha"
	"reviewgate/internal/infra/email"
	"reviewgate/internal/infra/guardstore"
	"reviewgate/internal/infra/queue"
	"reviewgate/internal/infra/store"
	"reviewgate/internal/infra/template"
	"reviewgate/internal/router"

	"github.com/hibiken/asynq"
)

// queueEnqueuer adapts the asynq client to the review.Enqueuer interface.
type queueEnqueuer struct {
	client   *asynq.Client
	maxRetry int
}

func (q *queueEnqueuer) EnqueueDispatchReview(reviewID, callerID string) error {
	return queue.EnqueueDispatchReview(q.client, reviewID, callerID, q.maxRetry)
}

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "port", cfg.Server.Port, "mode", cfg.Server.Mode)

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	// Supabase review store (service role, the trusted data path)
	reviewStore, err := store.NewSupabaseReviewStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		slog.Error("failed to initialize supabase review store", "error", err)
		os.Exit(1)
	}
	slog.Info("supabase review store initialized")

	// Supabase token verifier (anon key, end-user tokens)
	tokenVerifier, err := auth.NewSupabaseVerifier(cfg.Supabase.URL, cfg.Supabase.AnonKey)
	if err != nil {
		slog.Error("failed to initialize supabase token verifier", "error", err)
		os.Exit(1)
	}

	// Submission guard, windows persisted in Redis
	window := time.Duration(cfg.Guard.WindowSec) * time.Second
	guardStore := guardstore.NewRedisStore(
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
		window,
	)
	defer guardStore.Close()
	guards := review.NewGuardRegistry(guardStore, cfg.Guard.MaxAttempts, window)
	slog.Info("submission guard initialized",
		"max_attempts", cfg.Guard.MaxAttempts,
		"window", window,
	)

	// Template engine
	tmplEngine, err := template.NewEngine(resolveTemplatesDir())
	if err != nil {
		slog.Error("failed to initialize template engine", "error", err)
		os.Exit(1)
	}

	// Email provider (Resend); left nil when no API key is configured so the
	// dispatcher reports the transport as unavailable.
	var emailProvider review.Provider
	if cfg.Email.APIKey != "" {
		emailProvider = email.NewResendProvider(
			cfg.Email.APIKey,
			cfg.Email.FromAddress,
			cfg.Email.FromName,
		)
	} else {
		slog.Warn("email API key not configured, notification dispatch disabled")
	}

	// Dispatcher
	dispatcher := review.NewDispatcher(reviewStore, tmplEngine, emailProvider, review.DispatcherConfig{
		Recipients:       cfg.Dispatch.AdminEmails,
		RecipientTimeout: time.Duration(cfg.Dispatch.RecipientTimeoutSec) * time.Second,
		AdminPanelURL:    cfg.Dispatch.AdminPanelURL,
	})

	// Asynq client (for fire-and-forget dispatch tasks)
	asynqClient := queue.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	defer asynqClient.Close()
	slog.Info("asynq client initialized", "redis", cfg.Redis.Address)

	enqueuer := &queueEnqueuer{
		client:   asynqClient,
		maxRetry: cfg.Queue.MaxRetry,
	}

	// Service
	reviewService := review.NewService(reviewStore, guards, enqueuer)

	// Handlers
	reviewHandler := review.NewHandler(reviewService, dispatcher)
	captchaHandler := captcha.NewHandler(
		captchainfra.NewRecaptchaVerifier(cfg.Captcha.SecretKey),
		cfg.Captcha.ScoreThreshold,
	)

	// Router
	r := router.New(cfg, tokenVerifier, reviewHandler, captchaHandler)

	// ==========================================
	// HTTP Server with Graceful Shutdown
	// ==========================================

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Give outstanding requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// resolveTemplatesDir finds the templates directory.
func resolveTemplatesDir() string {
	// Check if running in Docker (production)
	if _, err := os.Stat("/app/templates"); err == nil {
		return "/app/templates"
	}

	// Development: resolve relative to the source file location
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "internal/infra/template/templates"
	}

	// Navigate from cmd/server/main.go to internal/infra/template/templates
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(projectRoot, "internal", "infra", "template", "templates")
}
