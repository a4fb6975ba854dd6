package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

func TestWorkerProcessTaskSuccess(t *testing.T) {
	provider := newFakeProvider()
	w := NewWorker(testDispatcher(newFakeReviewStore(ownedReview()), provider, "a@example.com"))

	if err := w.ProcessTask(context.Background(), "rev-1", "user-a"); err != nil {
		t.Fatal(err)
	}
	if provider.sentCount() != 1 {
		t.Errorf("sent = %d, want 1", provider.sentCount())
	}
}

func TestWorkerSkipsRetryOnPermanentFailure(t *testing.T) {
	w := NewWorker(testDispatcher(newFakeReviewStore(ownedReview()), newFakeProvider(), "a@example.com"))

	// Ownership mismatch never heals; retrying is pointless.
	err := w.ProcessTask(context.Background(), "rev-1", "user-b")
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("ownership mismatch should skip retry, got %v", err)
	}

	err = w.ProcessTask(context.Background(), "missing", "user-a")
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("missing review should skip retry, got %v", err)
	}
}

func TestWorkerRetriesTransientFailure(t *testing.T) {
	store := newFakeReviewStore(ownedReview())
	store.getErr = errors.New("connection refused")
	w := NewWorker(testDispatcher(store, newFakeProvider(), "a@example.com"))

	err := w.ProcessTask(context.Background(), "rev-1", "user-a")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, asynq.SkipRetry) {
		t.Error("store outage is transient and should be retried")
	}
}

func TestDispatchTaskPayloadRoundTrip(t *testing.T) {
	task, err := NewDispatchReviewTask("rev-9", "user-z")
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != TaskTypeDispatchReview {
		t.Errorf("task type = %s", task.Type())
	}

	payload, err := ParseDispatchReviewPayload(task.Payload())
	if err != nil {
		t.Fatal(err)
	}
	if payload.ReviewID != "rev-9" || payload.CallerID != "user-z" {
		t.Errorf("payload = %+v", payload)
	}

	if _, err := ParseDispatchReviewPayload([]byte("not json")); err == nil {
		t.Error("garbage payload should fail to parse")
	}
}

// Guards against the settle-all barrier leaking goroutines past the response.
func TestDispatchSettlesBeforeReturn(t *testing.T) {
	provider := newFakeProvider()
	provider.delay["a@example.com"] = 30 * time.Millisecond
	provider.delay["b@example.com"] = 60 * time.Millisecond
	d := testDispatcher(newFakeReviewStore(ownedReview()), provider, "a@example.com", "b@example.com")

	summary, err := d.Dispatch(context.Background(), "user-a", "rev-1")
	if err != nil {
		t.Fatal(err)
	}
	// Both slow deliveries must have settled by the time Dispatch returns.
	if summary.SuccessCount != 2 {
		t.Errorf("success = %d, want 2", summary.SuccessCount)
	}
	if provider.sentCount() != 2 {
		t.Errorf("sent = %d, want 2", provider.sentCount())
	}
}
