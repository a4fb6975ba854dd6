package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reviewgate/internal/common"
)

type fakeReviewStore struct {
	mu        sync.Mutex
	reviews   map[string]*Review
	getErr    error
	createErr error
	gets      int
	creates   int
}

func newFakeReviewStore(revs ...*Review) *fakeReviewStore {
	s := &fakeReviewStore{reviews: make(map[string]*Review)}
	for _, r := range revs {
		s.reviews[r.ID] = r
	}
	return s
}

func (s *fakeReviewStore) Create(_ context.Context, rev *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return s.createErr
	}
	rev.ID = "rev-created"
	rev.CreatedAt = time.Now()
	s.reviews[rev.ID] = rev
	return nil
}

func (s *fakeReviewStore) GetByID(_ context.Context, id string) (*Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.reviews[id], nil
}

type fakeProvider struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
	delay   map[string]time.Duration
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{failFor: make(map[string]error), delay: make(map[string]time.Duration)}
}

func (p *fakeProvider) Send(ctx context.Context, msg *Message) (string, error) {
	if d := p.delay[msg.To]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := p.failFor[msg.To]; err != nil {
		return "", err
	}
	p.mu.Lock()
	p.sent = append(p.sent, msg.To)
	p.mu.Unlock()
	return "msg-id", nil
}

func (p *fakeProvider) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type stubRenderer struct {
	err error
}

func (r stubRenderer) Render(_ NotificationType, data map[string]any) (string, string, string, error) {
	if r.err != nil {
		return "", "", "", r.err
	}
	subject, _ := data["Subject"].(string)
	return subject, "<p>body</p>", "body", nil
}

func ownedReview() *Review {
	return &Review{
		ID:           "rev-1",
		UserID:       "user-a",
		CustomerName: "Arjun",
		Rating:       4,
		ReviewText:   "Publishing went smoothly, app was live in two days.",
	}
}

func testDispatcher(store ReviewStore, provider Provider, recipients ...string) *Dispatcher {
	return NewDispatcher(store, stubRenderer{}, provider, DispatcherConfig{
		Recipients:       recipients,
		RecipientTimeout: time.Second,
		AdminPanelURL:    "https://example.test/admin",
	})
}

func TestDispatchTransportNotConfigured(t *testing.T) {
	d := testDispatcher(newFakeReviewStore(ownedReview()), nil, "a@example.com")

	_, err := d.Dispatch(context.Background(), "user-a", "rev-1")

	var unavailable *common.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("want UnavailableError, got %v", err)
	}
}

func TestDispatchMissingReviewID(t *testing.T) {
	store := newFakeReviewStore()
	d := testDispatcher(store, newFakeProvider(), "a@example.com")

	_, err := d.Dispatch(context.Background(), "user-a", "")

	var validation *common.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if store.gets != 0 {
		t.Error("input validation must happen before any storage access")
	}
}

func TestDispatchReviewNotFound(t *testing.T) {
	provider := newFakeProvider()
	d := testDispatcher(newFakeReviewStore(), provider, "a@example.com")

	_, err := d.Dispatch(context.Background(), "user-a", "missing")

	var notFound *common.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
	if provider.sentCount() != 0 {
		t.Error("no delivery may be attempted for a missing review")
	}
}

func TestDispatchOwnershipMismatch(t *testing.T) {
	provider := newFakeProvider()
	d := testDispatcher(newFakeReviewStore(ownedReview()), provider, "a@example.com", "b@example.com")

	_, err := d.Dispatch(context.Background(), "user-b", "rev-1")

	var forbidden *common.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("want ForbiddenError, got %v", err)
	}
	if provider.sentCount() != 0 {
		t.Error("authorization must gate every delivery attempt")
	}
}

func TestDispatchAllRecipientsSucceed(t *testing.T) {
	provider := newFakeProvider()
	d := testDispatcher(newFakeReviewStore(ownedReview()), provider,
		"a@example.com", "b@example.com")

	summary, err := d.Dispatch(context.Background(), "user-a", "rev-1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.SuccessCount != 2 || summary.FailCount != 0 {
		t.Errorf("got %d/%d, want 2/0", summary.SuccessCount, summary.FailCount)
	}
	if provider.sentCount() != 2 {
		t.Errorf("sent %d messages, want 2", provider.sentCount())
	}
}

func TestDispatchPartialFailureStillHandled(t *testing.T) {
	provider := newFakeProvider()
	provider.failFor["b@example.com"] = errors.New("smtp refused")
	d := testDispatcher(newFakeReviewStore(ownedReview()), provider,
		"a@example.com", "b@example.com", "c@example.com")

	summary, err := d.Dispatch(context.Background(), "user-a", "rev-1")
	if err != nil {
		t.Fatalf("partial delivery failure must not fail the dispatch: %v", err)
	}

	if summary.SuccessCount != 2 || summary.FailCount != 1 {
		t.Errorf("got %d/%d, want 2/1", summary.SuccessCount, summary.FailCount)
	}

	// One recipient's failure must not block the others.
	if provider.sentCount() != 2 {
		t.Errorf("sent %d messages, want 2", provider.sentCount())
	}

	for _, outcome := range summary.Outcomes {
		if outcome.Recipient == "b@example.com" {
			if outcome.Status != DeliveryFailed || outcome.Reason == "" {
				t.Errorf("failed recipient outcome = %+v", outcome)
			}
		} else if outcome.Status != DeliveryDelivered {
			t.Errorf("outcome for %s = %+v", outcome.Recipient, outcome)
		}
	}
}

func TestDispatchAllFailuresStillHandled(t *testing.T) {
	provider := newFakeProvider()
	provider.failFor["a@example.com"] = errors.New("down")
	provider.failFor["b@example.com"] = errors.New("down")
	d := testDispatcher(newFakeReviewStore(ownedReview()), provider,
		"a@example.com", "b@example.com")

	summary, err := d.Dispatch(context.Background(), "user-a", "rev-1")
	if err != nil {
		t.Fatalf("total delivery failure is still a handled dispatch: %v", err)
	}
	if summary.SuccessCount != 0 || summary.FailCount != 2 {
		t.Errorf("got %d/%d, want 0/2", summary.SuccessCount, summary.FailCount)
	}
}

func TestDispatchSlowRecipientTimesOut(t *testing.T) {
	provider := newFakeProvider()
	provider.delay["slow@example.com"] = 2 * time.Second
	d := NewDispatcher(newFakeReviewStore(ownedReview()), stubRenderer{}, provider, DispatcherConfig{
		Recipients:       []string{"slow@example.com", "fast@example.com"},
		RecipientTimeout: 50 * time.Millisecond,
	})

	start := time.Now()
	summary, err := d.Dispatch(context.Background(), "user-a", "rev-1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.SuccessCount != 1 || summary.FailCount != 1 {
		t.Errorf("got %d/%d, want 1/1", summary.SuccessCount, summary.FailCount)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("slow recipient stalled the fan-out for %v", elapsed)
	}
}

func TestStars(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{0, "☆☆☆☆☆"},
		{1, "★☆☆☆☆"},
		{3, "★★★☆☆"},
		{5, "★★★★★"},
		{7, "★★★★★"},
		{-2, "☆☆☆☆☆"},
	}
	for _, tt := range tests {
		if got := Stars(tt.rating); got != tt.want {
			t.Errorf("Stars(%d) = %q, want %q", tt.rating, got, tt.want)
		}
	}
}
