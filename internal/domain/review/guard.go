package review

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// StateStore is the durable per-identity key-value slot backing the
// submission guard. Implementations live in infra/guardstore/.
type StateStore interface {
	// Get returns the stored value for key, or nil, nil when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the value for key.
	Delete(ctx context.Context, key string) error
}

// GuardConfig configures one submission guard instance.
type GuardConfig struct {
	MaxAttempts int
	Window      time.Duration
	IdentityKey string
}

// GuardState is the persisted window counter for one identity. Timestamps
// are unix milliseconds so the stored form stays integral.
type GuardState struct {
	Attempts    int   `json:"attempts"`
	WindowStart int64 `json:"window_start"`
}

// SubmissionGuard throttles how often one identity may submit, using a
// fixed window that resets entirely once it elapses. It is an advisory
// usability throttle, not a security boundary: every store failure is
// swallowed and treated as "no prior state", so the guard can never block
// a submission on infrastructure errors.
type SubmissionGuard struct {
	store StateStore
	cfg   GuardConfig
	now   func() time.Time

	mu        sync.Mutex
	limited   bool
	remaining int
}

// NewSubmissionGuard creates a guard for the identity named in cfg.
func NewSubmissionGuard(store StateStore, cfg GuardConfig) *SubmissionGuard {
	return &SubmissionGuard{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// CheckLimit reports whether a new attempt is currently blocked. It is cheap
// and safe to call on a timer (e.g., once per second) to keep a countdown
// display current; only the window-reset branch writes state back.
func (g *SubmissionGuard) CheckLimit(ctx context.Context) bool {
	st := g.loadState(ctx)
	nowMs := g.now().UnixMilli()
	windowMs := g.cfg.Window.Milliseconds()

	// Window elapsed: start fresh.
	if nowMs-st.WindowStart > windowMs {
		g.saveState(ctx, GuardState{Attempts: 0, WindowStart: nowMs})
		g.setLimited(false, 0)
		return false
	}

	if st.Attempts >= g.cfg.MaxAttempts {
		g.setLimited(true, ceilSeconds(windowMs-(nowMs-st.WindowStart)))
		return true
	}

	g.mu.Lock()
	g.limited = false
	g.mu.Unlock()
	return false
}

// RecordAttempt counts one successful submission against the window. Call it
// only after the underlying durable write succeeded. When the count reaches
// the limit the limited flag flips immediately so observers need not wait
// for the next CheckLimit poll.
func (g *SubmissionGuard) RecordAttempt(ctx context.Context) {
	st := g.loadState(ctx)
	nowMs := g.now().UnixMilli()
	windowMs := g.cfg.Window.Milliseconds()

	if nowMs-st.WindowStart > windowMs {
		g.saveState(ctx, GuardState{Attempts: 1, WindowStart: nowMs})
		return
	}

	st.Attempts++
	g.saveState(ctx, st)

	if st.Attempts >= g.cfg.MaxAttempts {
		g.setLimited(true, ceilSeconds(windowMs-(nowMs-st.WindowStart)))
	}
}

// Reset clears the persisted state and the limited flag. Administrative and
// testing escape hatch; never part of the submission path.
func (g *SubmissionGuard) Reset(ctx context.Context) {
	_ = g.store.Delete(ctx, g.cfg.IdentityKey)
	g.setLimited(false, 0)
}

// Limited reports the last observed limited state.
func (g *SubmissionGuard) Limited() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limited
}

// RemainingSeconds reports the last computed wait time. Only meaningful
// while Limited returns true.
func (g *SubmissionGuard) RemainingSeconds() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.remaining
}

func (g *SubmissionGuard) setLimited(limited bool, remaining int) {
	g.mu.Lock()
	g.limited = limited
	g.remaining = remaining
	g.mu.Unlock()
}

// loadState reads the persisted state, degrading to a fresh window on any
// read or decode failure.
func (g *SubmissionGuard) loadState(ctx context.Context) GuardState {
	fresh := GuardState{WindowStart: g.now().UnixMilli()}

	raw, err := g.store.Get(ctx, g.cfg.IdentityKey)
	if err != nil || len(raw) == 0 {
		return fresh
	}

	var st GuardState
	if err := json.Unmarshal(raw, &st); err != nil {
		return fresh
	}
	return st
}

// saveState persists the state, best effort.
func (g *SubmissionGuard) saveState(ctx context.Context, st GuardState) {
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	_ = g.store.Set(ctx, g.cfg.IdentityKey, raw)
}

// ceilSeconds converts a positive millisecond remainder to whole seconds,
// rounding up.
func ceilSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}
