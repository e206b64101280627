package verify

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// ActivityLog is the append-only audit store. It implements ActivitySink so
// it can sit directly behind a QueuedSink.
type ActivityLog interface {
	ActivitySink

	List(ctx context.Context, page, limit int) ([]ActivityEntry, error)
}

type activityLog struct {
	db  *bun.DB
	now func() time.Time
}

var _ ActivityLog = (*activityLog)(nil)

// NewActivityLogRepository builds the audit store.
func NewActivityLogRepository(db *bun.DB) ActivityLog {
	return &activityLog{
		db:  db,
		now: time.Now,
	}
}

// Record appends one entry. There is no update or delete path: the table is
// append-only through this service.
func (r *activityLog) Record(ctx context.Context, entry ActivityEntry) error {
	if entry.CreatedAt == nil {
		now := r.now().UTC()
		entry.CreatedAt = &now
	}

	if _, err := r.db.NewInsert().Model(&entry).Exec(ctx); err != nil {
		return NewStoreError(err)
	}
	return nil
}

// List returns entries newest first, joined with the acting username where
// the account still exists.
func (r *activityLog) List(ctx context.Context, page, limit int) ([]ActivityEntry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var entries []ActivityEntry
	err := r.db.NewSelect().
		Model(&entries).
		ColumnExpr("act.*").
		ColumnExpr("usr.username AS username").
		Join("LEFT JOIN users AS usr ON usr.id = act.user_id").
		OrderExpr("act.created_at DESC, act.id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(ctx)
	if err != nil {
		return nil, NewStoreError(err)
	}

	return entries, nil
}
