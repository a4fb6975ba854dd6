package review

import (
	"strings"
	"time"
)

// ReviewStatus represents the moderation state of a review.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

// Review is the durable review record. Every field except ID is written at
// submission time; notification rendering re-reads all of them from the
// store rather than accepting them from any request.
type Review struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	OrderID      string       `json:"order_id,omitempty"`
	CustomerName string       `json:"customer_name"`
	Rating       int          `json:"rating"`
	ReviewText   string       `json:"review_text"`
	Status       ReviewStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// SubmitRequest is the API request payload for submitting a review.
type SubmitRequest struct {
	OrderID      string `json:"order_id" binding:"required,uuid"`
	CustomerName string `json:"customer_name" binding:"max=100"`
	Rating       int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText   string `json:"review_text" binding:"required,min=10,max=500"`
}

// NotifyRequest is the API request payload for dispatching a review
// notification. It deliberately carries nothing but the identifier: the
// dispatcher fetches every other field through its own trusted store access.
type NotifyRequest struct {
	ReviewID string `json:"review_id" binding:"required"`
}

// NotifyResponse reports the fan-out outcome of a handled dispatch request.
type NotifyResponse struct {
	Message      string `json:"message"`
	SuccessCount int    `json:"successCount"`
	FailCount    int    `json:"failCount"`
}

// DeliveryStatus is the terminal state of one recipient delivery attempt.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// DeliveryOutcome is the per-recipient result of a fan-out.
type DeliveryOutcome struct {
	Recipient string
	Status    DeliveryStatus
	Reason    string
}

// DispatchSummary aggregates the fan-out outcomes of one dispatch.
type DispatchSummary struct {
	SuccessCount int
	FailCount    int
	Outcomes     []DeliveryOutcome
}

// NotificationType enumerates the supported notification templates.
type NotificationType string

const (
	TypeReviewSubmitted NotificationType = "review_submitted"
)

// Message is the internal rendered message ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Stars renders an integer score as a five-position star indicator,
// filled stars first. Scores outside 0..5 are clamped.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
