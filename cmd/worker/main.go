package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"reviewgate/internal/config"
	"reviewgate/internal/domain/review"
	"reviewgate/internal/infra/email"
	"reviewgate/internal/infra/queue"
	"reviewgate/internal/infra/store"
	"reviewgate/internal/infra/template"

	"github.com/hibiken/asynq"
)

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

	slog.Info("worker configuration loaded")

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	// Template engine
	tmplEngine, err := template.NewEngine(resolveTemplatesDir())
	if err != nil {
		slog.Error("failed to initialize template engine", "error", err)
		os.Exit(1)
	}

	// Email provider (Resend)
	var emailProvider review.Provider
	if cfg.Email.APIKey != "" {
		emailProvider = email.NewResendProvider(
			cfg.Email.APIKey,
			cfg.Email.FromAddress,
			cfg.Email.FromName,
		)
	} else {
		slog.Warn("email API key not configured, dispatch tasks will be retried until it is")
	}

	// Supabase review store (service role)
	reviewStore, err := store.NewSupabaseReviewStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		slog.Error("failed to initialize supabase review store", "error", err)
		os.Exit(1)
	}
	slog.Info("supabase review store initialized")

	// Dispatcher + worker
	dispatcher := review.NewDispatcher(reviewStore, tmplEngine, emailProvider, review.DispatcherConfig{
		Recipients:       cfg.Dispatch.AdminEmails,
		RecipientTimeout: time.Duration(cfg.Dispatch.RecipientTimeoutSec) * time.Second,
		AdminPanelURL:    cfg.Dispatch.AdminPanelURL,
	})
	dispatchWorker := review.NewWorker(dispatcher)

	// ==========================================
	// Asynq Server (task processing)
	// ==========================================

	asynqServer := queue.NewServer(
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Queue.Concurrency,
		time.Duration(cfg.Queue.RetryDelaySec)*time.Second,
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(review.TaskTypeDispatchReview, func(ctx context.Context, task *asynq.Task) error {
		payload, err := review.ParseDispatchReviewPayload(task.Payload())
		if err != nil {
			// A payload that never parsed will never parse.
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return dispatchWorker.ProcessTask(ctx, payload.ReviewID, payload.CallerID)
	})

	// Start the asynq worker in a goroutine
	go func() {
		slog.Info("worker starting",
			"concurrency", cfg.Queue.Concurrency,
			"redis", cfg.Redis.Address,
		)
		if err := asynqServer.Run(mux); err != nil {
			slog.Error("worker failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// ==========================================
	// Graceful Shutdown
	// ==========================================

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	asynqServer.Shutdown()
	slog.Info("worker exited gracefully")
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

	// Navigate from cmd/worker/main.go to internal/infra/template/templates
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(projectRoot, "internal", "infra", "template", "templates")
}
