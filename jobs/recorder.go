package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/lifeup-app/lifeup-api/internal/audit"
)

// QueueRecorder implements audit.Recorder by enqueuing entries for the
// worker, keeping the request path free of database writes. The caller
// treats enqueue failures as droppable.
type QueueRecorder struct {
	client *Client
}

// NewQueueRecorder constructs a QueueRecorder over the asynq client.
func NewQueueRecorder(client *Client) *QueueRecorder {
	return &QueueRecorder{client: client}
}

// Record enqueues one entry.
func (r *QueueRecorder) Record(ctx context.Context, entry audit.Entry) error {
	task, err := NewActivityRecordTask(entry)
	if err != nil {
		return fmt.Errorf("jobs: build activity task: %w", err)
	}
	if _, err := r.client.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault)); err != nil {
		return fmt.Errorf("jobs: enqueue activity task: %w", err)
	}
	return nil
}

var _ audit.Recorder = (*QueueRecorder)(nil)
