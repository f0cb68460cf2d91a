package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeup-app/lifeup-api/internal/shared"
)

// PGRepository persists and reads activity logs in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Record inserts one entry. Implements Recorder for deployments without a
// task queue.
func (r *PGRepository) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_logs (id, user_id, action, resource, details, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.UserID, entry.Action, entry.Resource,
		nullable(entry.Details), nullable(entry.IPAddress), nullable(entry.UserAgent), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: record: %w", err)
	}
	return nil
}

// List returns entries newest first, paged.
func (r *PGRepository) List(ctx context.Context, page, pageSize int) ([]Entry, error) {
	paging := shared.NewPagination(page, pageSize)
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, action, resource, COALESCE(details, ''), COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		 FROM activity_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		paging.PerPage, paging.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Resource, &e.Details, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ Recorder = (*PGRepository)(nil)
