// Package audit records privileged mutations into the activity log.
// Recording is fire-and-forget: a slow or failing sink never adds latency
// or failure to the request that triggered it.
package audit

import (
	"context"
	"time"
)

// Entry is one activity-log record.
type Entry struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	Details   string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// Recorder accepts entries for eventual persistence. Implementations must
// be cheap to call from the request path; the pgx repository satisfies it
// for direct writes and the jobs package provides a queue-backed one.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}
