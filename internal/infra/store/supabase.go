package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reviewgate/internal/domain/review"

	supa "github.com/supabase-community/supabase-go"
)

const tableName = "reviews"

var _ review.ReviewStore = (*SupabaseReviewStore)(nil)

// reviewColumns is the exact field set the dispatcher is allowed to read.
const reviewColumns = "id, user_id, order_id, customer_name, rating, review_text, status, created_at"

// SupabaseReviewStore implements ReviewStore using the Supabase Go SDK with
// the service-role key. This is the trusted data path: rows read here are
// authoritative, regardless of what any client claimed.
type SupabaseReviewStore struct {
	client *supa.Client
}

// NewSupabaseReviewStore creates a new Supabase-backed review store.
func NewSupabaseReviewStore(supabaseURL, serviceKey string) (*SupabaseReviewStore, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &SupabaseReviewStore{client: client}, nil
}

// reviewRow is the internal representation for Supabase PostgREST insert/select.
type reviewRow struct {
	ID           string  `json:"id,omitempty"`
	UserID       string  `json:"user_id"`
	OrderID      *string `json:"order_id,omitempty"`
	CustomerName string  `json:"customer_name"`
	Rating       int     `json:"rating"`
	ReviewText   string  `json:"review_text"`
	Status       string  `json:"status,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// Create inserts a new review record and fills in the server-assigned
// ID and creation timestamp.
func (s *SupabaseReviewStore) Create(ctx context.Context, rev *review.Review) error {
	row := reviewRow{
		UserID:       rev.UserID,
		CustomerName: rev.CustomerName,
		Rating:       rev.Rating,
		ReviewText:   rev.ReviewText,
		Status:       string(rev.Status),
	}
	if rev.OrderID != "" {
		row.OrderID = &rev.OrderID
	}

	// Insert and get the created row back
	data, _, err := s.client.From(tableName).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}

	var results []reviewRow
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parsing insert response: %w", err)
	}

	if len(results) > 0 {
		rev.ID = results[0].ID
		if results[0].CreatedAt != "" {
			if t, err := time.Parse(time.RFC3339Nano, results[0].CreatedAt); err == nil {
				rev.CreatedAt = t
			}
		}
	}

	return nil
}

// GetByID retrieves a review by its ID. Returns nil, nil if no record exists.
func (s *SupabaseReviewStore) GetByID(ctx context.Context, id string) (*review.Review, error) {
	data, _, err := s.client.From(tableName).Select(reviewColumns, "exact", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching review: %w", err)
	}

	var rows []reviewRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing review: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rowToReview(&rows[0]), nil
}

// rowToReview converts a reviewRow to a Review.
func rowToReview(row *reviewRow) *review.Review {
	rev := &review.Review{
		ID:           row.ID,
		UserID:       row.UserID,
		CustomerName: row.CustomerName,
		Rating:       row.Rating,
		ReviewText:   row.ReviewText,
		Status:       review.ReviewStatus(row.Status),
	}

	if row.OrderID != nil {
		rev.OrderID = *row.OrderID
	}

	if row.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
			rev.CreatedAt = t
		}
	}

	return rev
}
