package verify

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// MethodCount is one row of the per-method breakdown.
type MethodCount struct {
	Method string `bun:"method" json:"verification_method"`
	Count  int    `bun:"count" json:"count"`
}

// DailyCount is one bucket of the 30-day histogram.
type DailyCount struct {
	Date  string `bun:"date" json:"date"`
	Count int    `bun:"count" json:"count"`
}

// Stats is the dashboard aggregate. Every field is an independent read
// query; there are no cross-record invariants here.
type Stats struct {
	TotalVerifications  int           `json:"total_verifications"`
	RecentVerifications int           `json:"recent_verifications"`
	WeeklyVerifications int           `json:"weekly_verifications"`
	TotalUsers          int           `json:"total_users"`
	Methods             []MethodCount `json:"verification_methods"`
	Daily               []DailyCount  `json:"daily_verifications"`
}

// Analytics computes read-only aggregates for the dashboard.
type Analytics struct {
	db  *bun.DB
	now func() time.Time
}

// NewAnalytics builds the aggregation service.
func NewAnalytics(db *bun.DB) *Analytics {
	return &Analytics{
		db:  db,
		now: time.Now,
	}
}

// Stats runs the dashboard queries.
func (a *Analytics) Stats(ctx context.Context) (*Stats, error) {
	now := a.now().UTC()
	stats := &Stats{
		Methods: []MethodCount{},
		Daily:   []DailyCount{},
	}

	total, err := a.db.NewSelect().Model((*Verification)(nil)).Count(ctx)
	if err != nil {
		return nil, NewStoreError(err)
	}
	stats.TotalVerifications = total

	recent, err := a.db.NewSelect().
		Model((*Verification)(nil)).
		Where("created_at > ?", now.Add(-24*time.Hour)).
		Count(ctx)
	if err != nil {
		return nil, NewStoreError(err)
	}
	stats.RecentVerifications = recent

	weekly, err := a.db.NewSelect().
		Model((*Verification)(nil)).
		Where("created_at > ?", now.Add(-7*24*time.Hour)).
		Count(ctx)
	if err != nil {
		return nil, NewStoreError(err)
	}
	stats.WeeklyVerifications = weekly

	totalUsers, err := a.db.NewSelect().Model((*User)(nil)).Count(ctx)
	if err != nil {
		return nil, NewStoreError(err)
	}
	stats.TotalUsers = totalUsers

	if err := a.db.NewSelect().
		Model((*Verification)(nil)).
		ColumnExpr("verification_method AS method").
		ColumnExpr("count(*) AS count").
		GroupExpr("verification_method").
		Scan(ctx, &stats.Methods); err != nil {
		return nil, NewStoreError(err)
	}

	if err := a.db.NewSelect().
		Model((*Verification)(nil)).
		ColumnExpr("date(created_at) AS date").
		ColumnExpr("count(*) AS count").
		Where("created_at > ?", now.Add(-30*24*time.Hour)).
		GroupExpr("date(created_at)").
		OrderExpr("date ASC").
		Scan(ctx, &stats.Daily); err != nil {
		return nil, NewStoreError(err)
	}

	// empty aggregates serialize as [] rather than null
	if stats.Methods == nil {
		stats.Methods = []MethodCount{}
	}
	if stats.Daily == nil {
		stats.Daily = []DailyCount{}
	}

	return stats, nil
}
