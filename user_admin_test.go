package verify_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verify "github.com/goliatone/go-verify"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		ok       bool
	}{
		{name: "simple", username: "abc", ok: true},
		{name: "mixed", username: "User_42", ok: true},
		{name: "max length", username: strings.Repeat("a", 32), ok: true},
		{name: "empty", username: "", ok: false},
		{name: "too short", username: "ab", ok: false},
		{name: "too long", username: strings.Repeat("a", 33), ok: false},
		{name: "bad character", username: "a!b", ok: false},
		{name: "space", username: "a b c", ok: false},
		{name: "all digits", username: "12345", ok: false},
		{name: "digits with letter", username: "12345a", ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := verify.ValidateUsername(tc.username)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func newUserAdminFixture(t *testing.T) (verify.Users, *verify.UserAdmin, *recordingSink) {
	t.Helper()

	db := setupTestDB(t)
	users := verify.NewUsersRepository(db)
	sink := &recordingSink{}
	admin := verify.NewUserAdmin(users).WithActivitySink(sink)

	return users, admin, sink
}

func TestUserAdminCreate(t *testing.T) {
	users, admin, sink := newUserAdminFixture(t)
	actor := identityOf(seedUser(t, users, "boss", "password1", verify.RoleAdmin))
	ctx := context.Background()

	t.Run("defaults role to user", func(t *testing.T) {
		record, err := admin.Create(ctx, actor, "newbie", "password1", "")
		require.NoError(t, err)
		assert.Equal(t, verify.RoleUser, record.Role)
	})

	t.Run("rejects invalid username", func(t *testing.T) {
		_, err := admin.Create(ctx, actor, "x", "password1", verify.RoleUser)
		assert.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := admin.Create(ctx, actor, "validname", "tiny", verify.RoleUser)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6 characters")
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := admin.Create(ctx, actor, "validname", "password1", "owner")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "role must be user or admin")
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		_, err := admin.Create(ctx, actor, "newbie", "password1", verify.RoleUser)
		assert.ErrorIs(t, err, verify.ErrDuplicateUsername)
	})

	t.Run("audits the creation", func(t *testing.T) {
		actions := sink.actions()
		require.Len(t, actions, 1)
		assert.Equal(t, verify.ActionCreateUser, actions[0])
	})
}

func TestUserAdminUpdateRole(t *testing.T) {
	users, admin, _ := newUserAdminFixture(t)
	actorUser := seedUser(t, users, "boss", "password1", verify.RoleAdmin)
	target := seedUser(t, users, "worker", "password1", verify.RoleUser)
	actor := identityOf(actorUser)
	ctx := context.Background()

	t.Run("promotes a user", func(t *testing.T) {
		record, err := admin.UpdateRole(ctx, actor, target.ID.String(), verify.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, verify.RoleAdmin, record.Role)
	})

	t.Run("rejects invalid role", func(t *testing.T) {
		_, err := admin.UpdateRole(ctx, actor, target.ID.String(), "owner")
		assert.Error(t, err)
	})

	t.Run("admin cannot demote themselves", func(t *testing.T) {
		_, err := admin.UpdateRole(ctx, actor, actorUser.ID.String(), verify.RoleUser)
		assert.ErrorIs(t, err, verify.ErrSelfDemotion)
	})

	t.Run("admin may reassert their own admin role", func(t *testing.T) {
		_, err := admin.UpdateRole(ctx, actor, actorUser.ID.String(), verify.RoleAdmin)
		assert.NoError(t, err)
	})

	t.Run("unknown target is not found", func(t *testing.T) {
		_, err := admin.UpdateRole(ctx, actor, uuid.NewString(), verify.RoleUser)
		assert.True(t, verify.IsNotFound(err))
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		_, err := admin.UpdateRole(ctx, actor, "not-a-uuid", verify.RoleUser)
		assert.True(t, verify.IsNotFound(err))
	})
}

func TestUserAdminDelete(t *testing.T) {
	users, admin, sink := newUserAdminFixture(t)
	actorUser := seedUser(t, users, "boss", "password1", verify.RoleAdmin)
	target := seedUser(t, users, "doomed", "password1", verify.RoleUser)
	actor := identityOf(actorUser)
	ctx := context.Background()

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		err := admin.Delete(ctx, actor, actorUser.ID.String())
		assert.ErrorIs(t, err, verify.ErrSelfDeletion)
	})

	t.Run("deletes and audits the username", func(t *testing.T) {
		require.NoError(t, admin.Delete(ctx, actor, target.ID.String()))

		entries := sink.all()
		require.Len(t, entries, 1)
		assert.Equal(t, verify.ActionDeleteUser, entries[0].Action)
		assert.Contains(t, entries[0].Details, "doomed")
	})

	t.Run("unknown target is not found", func(t *testing.T) {
		err := admin.Delete(ctx, actor, uuid.NewString())
		assert.True(t, verify.IsNotFound(err))
	})
}
