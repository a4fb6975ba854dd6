package queue

import (
	"fmt"
	"time"

	"reviewgate/internal/domain/review"

	"github.com/hibiken/asynq"
)

// dispatchQueue carries review notification dispatch tasks. It outweighs the
// default queue so dispatches are never starved by housekeeping tasks.
const dispatchQueue = "dispatch"

// NewClient creates a new asynq client connected to Redis.
func NewClient(redisAddr, password string, db int) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})
}

// NewServer creates a new asynq server connected to Redis. Retries back off
// exponentially from retryDelay (retryDelay, 2x, 4x, ...).
func NewServer(redisAddr, password string, db int, concurrency int, retryDelay time.Duration) *asynq.Server {
	if retryDelay <= 0 {
		retryDelay = 30 * time.Second
	}
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				dispatchQueue: 10,
				"default":     1,
			},
			RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
				return retryDelay * time.Duration(1<<uint(n-1))
			},
		},
	)
}

// EnqueueDispatchReview enqueues a review notification dispatch task.
func EnqueueDispatchReview(client *asynq.Client, reviewID, callerID string, maxRetry int) error {
	task, err := review.NewDispatchReviewTask(reviewID, callerID)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}

	_, err = client.Enqueue(task,
		asynq.MaxRetry(maxRetry),
		asynq.Queue(dispatchQueue),
	)
	if err != nil {
		return fmt.Errorf("enqueuing task: %w", err)
	}

	return nil
}
