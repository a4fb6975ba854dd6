package review

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskTypeDispatchReview is the asynq task type for dispatching a review notification.
const TaskTypeDispatchReview = "review:dispatch_notification"

// DispatchReviewPayload is the serialized payload for a dispatch task.
// CallerID is the identity verified at submit time, so the queued path runs
// the same ownership gate as the synchronous endpoint.
type DispatchReviewPayload struct {
	ReviewID string `json:"review_id"`
	CallerID string `json:"caller_id"`
}

// NewDispatchReviewTask creates a new asynq task for dispatching a review notification.
func NewDispatchReviewTask(reviewID, callerID string) (*asynq.Task, error) {
	payload, err := json.Marshal(DispatchReviewPayload{ReviewID: reviewID, CallerID: callerID})
	if err != nil {
		return nil, fmt.Errorf("marshaling task payload: %w", err)
	}
	return asynq.NewTask(TaskTypeDispatchReview, payload), nil
}

// ParseDispatchReviewPayload deserializes the task payload.
func ParseDispatchReviewPayload(data []byte) (*DispatchReviewPayload, error) {
	var p DispatchReviewPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling task payload: %w", err)
	}
	return &p, nil
}
