package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"reviewgate/internal/common"
)

// DispatcherConfig configures the notification fan-out.
type DispatcherConfig struct {
	// Recipients is the fixed list of addresses every review notification
	// goes to.
	Recipients []string

	// RecipientTimeout bounds each delivery attempt so one slow recipient
	// cannot stall the whole fan-out.
	RecipientTimeout time.Duration

	// AdminPanelURL is linked from the rendered notification.
	AdminPanelURL string
}

// Dispatcher turns a review identifier into notifications for every
// configured recipient. It owns no state across requests: each Dispatch call
// re-fetches the review through the trusted store path and re-checks
// ownership before anything is sent. The caller may only supply the
// identifier; every rendered field comes from the store.
type Dispatcher struct {
	store    ReviewStore
	renderer TemplateRenderer
	provider Provider
	cfg      DispatcherConfig
}

// NewDispatcher creates a new Dispatcher. A nil provider means the outbound
// transport is not configured; Ready reports that and Dispatch refuses to
// run.
func NewDispatcher(store ReviewStore, renderer TemplateRenderer, provider Provider, cfg DispatcherConfig) *Dispatcher {
	if cfg.RecipientTimeout <= 0 {
		cfg.RecipientTimeout = 10 * time.Second
	}
	return &Dispatcher{
		store:    store,
		renderer: renderer,
		provider: provider,
		cfg:      cfg,
	}
}

// Ready reports whether the outbound transport is configured.
func (d *Dispatcher) Ready() bool {
	return d.provider != nil
}

// Dispatch fetches the review, verifies the caller owns it, renders the
// notification, and fans it out to every recipient concurrently, waiting for
// all attempts to settle. Individual delivery failures are logged and
// counted, never escalated: a fan-out with failures is still a handled
// dispatch. Authorization must succeed before any delivery is attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, callerID, reviewID string) (*DispatchSummary, error) {
	if !d.Ready() {
		return nil, common.NewUnavailableError("email service not configured")
	}
	if reviewID == "" {
		return nil, common.NewValidationError("missing required field: review_id")
	}

	rev, err := d.store.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("fetching review %s: %w", reviewID, err)
	}
	if rev == nil {
		return nil, common.NewNotFoundError("review", reviewID)
	}

	if rev.UserID != callerID {
		slog.Warn("review ownership mismatch",
			"review_id", reviewID,
			"caller_id", callerID,
			"owner_id", rev.UserID,
		)
		return nil, common.NewForbiddenError("caller does not own this review")
	}

	subject, html, text, err := d.renderer.Render(TypeReviewSubmitted, map[string]any{
		"Subject":       fmt.Sprintf("⭐ New %d-Star Review from %s", rev.Rating, rev.CustomerName),
		"CustomerName":  rev.CustomerName,
		"Rating":        rev.Rating,
		"Stars":         Stars(rev.Rating),
		"ReviewText":    rev.ReviewText,
		"OrderID":       rev.OrderID,
		"AdminPanelURL": d.cfg.AdminPanelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering review notification: %w", err)
	}

	// Settle-all fan-out: every attempt runs to completion before the
	// summary is built. Each goroutine owns its slot in the outcome slice.
	outcomes := make([]DeliveryOutcome, len(d.cfg.Recipients))
	var wg sync.WaitGroup
	for i, recipient := range d.cfg.Recipients {
		wg.Add(1)
		go func(i int, recipient string) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, d.cfg.RecipientTimeout)
			defer cancel()

			msg := &Message{
				To:      recipient,
				Subject: subject,
				HTML:    html,
				Text:    text,
			}

			if _, err := d.provider.Send(sendCtx, msg); err != nil {
				outcomes[i] = DeliveryOutcome{
					Recipient: recipient,
					Status:    DeliveryFailed,
					Reason:    err.Error(),
				}
				return
			}
			outcomes[i] = DeliveryOutcome{Recipient: recipient, Status: DeliveryDelivered}
		}(i, recipient)
	}
	wg.Wait()

	summary := &DispatchSummary{Outcomes: outcomes}
	for _, outcome := range outcomes {
		if outcome.Status == DeliveryDelivered {
			summary.SuccessCount++
			continue
		}
		summary.FailCount++
		// Failure reasons stay in the logs; callers only see counts.
		slog.Error("review notification delivery failed",
			"review_id", reviewID,
			"recipient", outcome.Recipient,
			"error", outcome.Reason,
		)
	}

	slog.Info("review notification dispatched",
		"review_id", reviewID,
		"rating", rev.Rating,
		"success_count", summary.SuccessCount,
		"fail_count", summary.FailCount,
	)

	return summary, nil
}
