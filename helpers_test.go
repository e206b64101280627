package verify_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	verify "github.com/goliatone/go-verify"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, verify.EnsureSchema(context.Background(), bunDB))

	t.Cleanup(func() {
		_ = bunDB.Close()
	})

	return bunDB
}

func seedUser(t *testing.T, users verify.Users, username, password, role string) *verify.User {
	t.Helper()

	hash, err := verify.HashPassword(password)
	require.NoError(t, err)

	record, err := users.Create(context.Background(), &verify.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)

	return record
}

type testIdentity struct {
	id       string
	username string
	role     string
}

func (a testIdentity) ID() string       { return a.id }
func (a testIdentity) Username() string { return a.username }
func (a testIdentity) Role() string     { return a.role }

func identityOf(u *verify.User) testIdentity {
	return testIdentity{
		id:       u.ID.String(),
		username: u.Username,
		role:     string(u.Role),
	}
}

// recordingSink captures audit entries for assertions.
type recordingSink struct {
	mu      sync.Mutex
	entries []verify.ActivityEntry
}

func (s *recordingSink) Record(_ context.Context, entry verify.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingSink) all() []verify.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]verify.ActivityEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *recordingSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}
