package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reviewgate/internal/common"
)

// Enqueuer defines the contract for enqueuing notification dispatch tasks.
// This allows the service to be decoupled from the specific queue implementation.
type Enqueuer interface {
	EnqueueDispatchReview(reviewID, callerID string) error
}

// Service orchestrates the review submission flow:
// guard check → durable write → record attempt → fire-and-forget dispatch.
type Service struct {
	store    ReviewStore
	guards   *GuardRegistry
	enqueuer Enqueuer
}

// NewService creates a new review service.
func NewService(store ReviewStore, guards *GuardRegistry, enqueuer Enqueuer) *Service {
	return &Service{
		store:    store,
		guards:   guards,
		enqueuer: enqueuer,
	}
}

// Submit validates and stores a review for the authenticated user, then
// enqueues its admin notification. The submission is successful once the
// durable write succeeds; the notification outcome is only ever logged.
func (s *Service) Submit(ctx context.Context, userID string, req *SubmitRequest) (*Review, error) {
	text := strings.TrimSpace(req.ReviewText)
	if len(text) < 10 {
		return nil, common.NewValidationError("review must be at least 10 characters")
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		name = "Valued Customer"
	}

	guard := s.guards.For(userID)
	if guard.CheckLimit(ctx) {
		return nil, common.NewRateLimitedError(guard.RemainingSeconds())
	}

	rev := &Review{
		UserID:       userID,
		OrderID:      req.OrderID,
		CustomerName: name,
		Rating:       req.Rating,
		ReviewText:   text,
		Status:       StatusPending,
	}

	if err := s.store.Create(ctx, rev); err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
	}

	// Only a completed durable write counts against the window.
	guard.RecordAttempt(ctx)

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueDispatchReview(rev.ID, userID); err != nil {
			// Fire-and-forget: the submission already succeeded.
			slog.Error("failed to enqueue review notification",
				"review_id", rev.ID,
				"error", err,
			)
		}
	}

	slog.Info("review submitted",
		"review_id", rev.ID,
		"user_id", userID,
		"rating", rev.Rating,
	)

	return rev, nil
}

// ResetGuard clears the submission window for one identity. Administrative
// override only.
func (s *Service) ResetGuard(ctx context.Context, identity string) {
	s.guards.For(identity).Reset(ctx)
	slog.Info("submission guard reset", "identity", identity)
}
