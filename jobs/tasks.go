package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lifeup-app/lifeup-api/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskActivityRecord is the task type carrying one activity-log entry.
	TaskActivityRecord = "activity:record"
)

// ActivityRecordPayload is the wire form of an activity-log entry.
type ActivityRecordPayload struct {
	UserID     string    `json:"userId"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewActivityRecordTask constructs an Asynq task from an audit entry.
func NewActivityRecordTask(entry audit.Entry) (*asynq.Task, error) {
	occurredAt := entry.CreatedAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(ActivityRecordPayload{
		UserID:     entry.UserID,
		Action:     entry.Action,
		Resource:   entry.Resource,
		Details:    entry.Details,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		OccurredAt: occurredAt,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskActivityRecord, data), nil
}

// NewActivityRecordHandler builds the worker-side handler persisting
// entries through the given recorder.
func NewActivityRecordHandler(sink audit.Recorder, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ActivityRecordPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			if logger != nil {
				logger.Warn("activity record payload malformed", slog.Any("error", err))
			}
			return asynq.SkipRetry
		}
		return sink.Record(ctx, audit.Entry{
			UserID:    payload.UserID,
			Action:    payload.Action,
			Resource:  payload.Resource,
			Details:   payload.Details,
			IPAddress: payload.IPAddress,
			UserAgent: payload.UserAgent,
			CreatedAt: payload.OccurredAt,
		})
	}
}
