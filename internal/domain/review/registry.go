package review

import (
	"sync"
	"time"
)

const guardKeyPrefix = "review_rate_limit_"

// GuardRegistry hands out one SubmissionGuard per identity, creating them
// lazily on first use. All guards share the same store and window settings.
type GuardRegistry struct {
	mu     sync.RWMutex
	guards map[string]*SubmissionGuard

	store       StateStore
	maxAttempts int
	window      time.Duration
}

// NewGuardRegistry creates a new GuardRegistry.
func NewGuardRegistry(store StateStore, maxAttempts int, window time.Duration) *GuardRegistry {
	return &GuardRegistry{
		guards:      make(map[string]*SubmissionGuard),
		store:       store,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// For retrieves or creates the guard for the given identity. An empty
// identity falls back to a shared anonymous slot.
func (r *GuardRegistry) For(identity string) *SubmissionGuard {
	if identity == "" {
		identity = "guest"
	}

	r.mu.RLock()
	guard, exists := r.guards[identity]
	r.mu.RUnlock()

	if exists {
		return guard
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if guard, exists = r.guards[identity]; exists {
		return guard
	}

	guard = NewSubmissionGuard(r.store, GuardConfig{
		MaxAttempts: r.maxAttempts,
		Window:      r.window,
		IdentityKey: guardKeyPrefix + identity,
	})
	r.guards[identity] = guard
	return guard
}
