package verify_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	verify "github.com/goliatone/go-verify"
)

func insertVerificationAt(t *testing.T, db *bun.DB, discordID string, createdAt time.Time) {
	t.Helper()

	record := &verify.Verification{
		DiscordID: discordID,
		Ckey:      discordID + "_ckey",
		Flags:     verify.Flags{},
		Method:    verify.DefaultVerificationMethod,
		CreatedAt: &createdAt,
		UpdatedAt: &createdAt,
	}
	_, err := db.NewInsert().Model(record).Exec(context.Background())
	require.NoError(t, err)
}

func TestAnalyticsStats(t *testing.T) {
	db := setupTestDB(t)
	users := verify.NewUsersRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()

	// two in the last day, one more within the week, one ancient
	insertVerificationAt(t, db, "fresh_1", now.Add(-1*time.Hour))
	insertVerificationAt(t, db, "fresh_2", now.Add(-2*time.Hour))
	insertVerificationAt(t, db, "weekly", now.Add(-3*24*time.Hour))
	insertVerificationAt(t, db, "ancient", now.Add(-90*24*time.Hour))

	seedUser(t, users, "admin", "password1", verify.RoleAdmin)
	seedUser(t, users, "worker", "password1", verify.RoleUser)

	stats, err := verify.NewAnalytics(db).Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalVerifications)
	assert.Equal(t, 2, stats.RecentVerifications)
	assert.Equal(t, 3, stats.WeeklyVerifications)
	assert.Equal(t, 2, stats.TotalUsers)

	require.Len(t, stats.Methods, 1)
	assert.Equal(t, verify.DefaultVerificationMethod, stats.Methods[0].Method)
	assert.Equal(t, 4, stats.Methods[0].Count)

	// the 30-day histogram excludes the ancient record
	var histogramTotal int
	for _, bucket := range stats.Daily {
		histogramTotal += bucket.Count
	}
	assert.Equal(t, 3, histogramTotal)
}

func TestAnalyticsStatsEmpty(t *testing.T) {
	db := setupTestDB(t)

	stats, err := verify.NewAnalytics(db).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalVerifications)
	assert.Equal(t, 0, stats.TotalUsers)
	assert.NotNil(t, stats.Methods)
	assert.NotNil(t, stats.Daily)
}

func TestAnalyticsMethodBreakdown(t *testing.T) {
	db := setupTestDB(t)
	repo := verify.NewVerificationsRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := repo.Upsert(ctx, fmt.Sprintf("manual_%d", i), "ckey", nil, "manual", "seed")
		require.NoError(t, err)
	}
	_, _, err := repo.Upsert(ctx, "oauth_1", "ckey", nil, "oauth", "seed")
	require.NoError(t, err)

	stats, err := verify.NewAnalytics(db).Stats(ctx)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, m := range stats.Methods {
		counts[m.Method] = m.Count
	}
	assert.Equal(t, 3, counts["manual"])
	assert.Equal(t, 1, counts["oauth"])
}
