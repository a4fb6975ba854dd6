package review

import "context"

// ReviewStore defines the contract for persisting and fetching reviews.
// Implementations live in infra/store/ (e.g., Supabase with the service-role
// key, which is the dispatcher's own trusted access path).
type ReviewStore interface {
	// Create inserts a new review record and fills in server-assigned fields.
	Create(ctx context.Context, rev *Review) error

	// GetByID retrieves a review by its ID.
	// Returns nil, nil if no record is found.
	GetByID(ctx context.Context, id string) (*Review, error)
}
