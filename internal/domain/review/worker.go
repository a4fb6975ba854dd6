package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reviewgate/internal/common"

	"github.com/hibiken/asynq"
)

// Worker processes queued dispatch tasks. It reuses the Dispatcher wholesale,
// so the asynchronous path fetches, authorizes, and fans out exactly like the
// synchronous endpoint.
type Worker struct {
	dispatcher *Dispatcher
}

// NewWorker creates a new dispatch worker.
func NewWorker(dispatcher *Dispatcher) *Worker {
	return &Worker{dispatcher: dispatcher}
}

// ProcessTask handles one queued dispatch. Permanent failures (bad input,
// missing review, ownership mismatch) skip asynq's retry; transient ones
// (store unreachable, transport unconfigured) are retried.
func (w *Worker) ProcessTask(ctx context.Context, reviewID, callerID string) error {
	start := time.Now()

	summary, err := w.dispatcher.Dispatch(ctx, callerID, reviewID)
	if err != nil {
		slog.Error("queued review notification dispatch failed",
			"review_id", reviewID,
			"error", err,
			"duration", time.Since(start),
		)
		if isPermanent(err) {
			return fmt.Errorf("dispatching review %s: %v: %w", reviewID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("dispatching review %s: %w", reviewID, err)
	}

	slog.Info("queued review notification dispatched",
		"review_id", reviewID,
		"success_count", summary.SuccessCount,
		"fail_count", summary.FailCount,
		"duration", time.Since(start),
	)

	return nil
}

func isPermanent(err error) bool {
	var validation *common.ValidationError
	var notFound *common.NotFoundError
	var forbidden *common.ForbiddenError
	return errors.As(err, &validation) || errors.As(err, &notFound) || errors.As(err, &forbidden)
}
