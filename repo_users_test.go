package verify_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verify "github.com/goliatone/go-verify"
)

func TestUsersCreate(t *testing.T) {
	db := setupTestDB(t)
	users := verify.NewUsersRepository(db)
	ctx := context.Background()

	t.Run("assigns id and default role", func(t *testing.T) {
		record, err := users.Create(ctx, &verify.User{
			Username:     "alice",
			PasswordHash: "hash",
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.Equal(t, verify.RoleUser, record.Role)
	})

	t.Run("duplicate username violates unique constraint", func(t *testing.T) {
		_, err := users.Create(ctx, &verify.User{
			Username:     "alice",
			PasswordHash: "hash",
		})
		require.Error(t, err)
		assert.True(t, verify.IsUniqueViolation(err))
	})
}

func TestUsersGetByUsername(t *testing.T) {
	db := setupTestDB(t)
	users := verify.NewUsersRepository(db)
	ctx := context.Background()

	seeded := seedUser(t, users, "bob", "password1", verify.RoleAdmin)

	t.Run("finds exact match", func(t *testing.T) {
		record, err := users.GetByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, record.ID)
		assert.Equal(t, verify.RoleAdmin, record.Role)
	})

	t.Run("lookup is case-sensitive", func(t *testing.T) {
		_, err := users.GetByUsername(ctx, "BOB")
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("unknown username is not found", func(t *testing.T) {
		_, err := users.GetByUsername(ctx, "nobody")
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestUsersUpdatePassword(t *testing.T) {
	db := setupTestDB(t)
	users := verify.NewUsersRepository(db)
	ctx := context.Background()

	seeded := seedUser(t, users, "carol", "password1", verify.RoleUser)

	require.NoError(t, users.UpdatePassword(ctx, seeded.ID, "newhash"))

	record, err := users.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "newhash", record.PasswordHash)

	err = users.UpdatePassword(ctx, uuid.New(), "newhash")
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersUpdateRole(t *testing.T) {
	db := setupTestDB(t)
	users := verify.NewUsersRepository(db)
	ctx := context.Background()

	seeded := seedUser(t, users, "dave", "password1", verify.RoleUser)

	record, err := users.UpdateRole(ctx, seeded.ID, verify.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, verify.RoleAdmin, record.Role)

	_, err = users.UpdateRole(ctx, uuid.New(), verify.RoleAdmin)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersDeleteByID(t *testing.T) {
	db := setupTestDB(t)
	users := verify.NewUsersRepository(db)
	ctx := context.Background()

	seeded := seedUser(t, users, "erin", "password1", verify.RoleUser)

	deleted, err := users.DeleteByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "erin", deleted.Username)

	_, err = users.GetByUsername(ctx, "erin")
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersList(t *testing.T) {
	db := setupTestDB(t)
	users := verify.NewUsersRepository(db)
	ctx := context.Background()

	seedUser(t, users, "one", "password1", verify.RoleUser)
	seedUser(t, users, "two", "password1", verify.RoleAdmin)

	records, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSeedAdmin(t *testing.T) {
	db := setupTestDB(t)
	users := verify.NewUsersRepository(db)
	ctx := context.Background()

	created, err := verify.SeedAdmin(ctx, users, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	record, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, verify.RoleAdmin, record.Role)
	assert.NoError(t, verify.ComparePasswordAndHash("admin123", record.PasswordHash))

	t.Run("second boot is a no-op", func(t *testing.T) {
		created, err := verify.SeedAdmin(ctx, users, "admin", "different")
		require.NoError(t, err)
		assert.False(t, created)

		record, err := users.GetByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.NoError(t, verify.ComparePasswordAndHash("admin123", record.PasswordHash))
	})
}
