package verify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verify "github.com/goliatone/go-verify"
)

func newAuthFixture(t *testing.T) (verify.Users, *verify.Auther, *recordingSink) {
	t.Helper()

	db := setupTestDB(t)
	users := verify.NewUsersRepository(db)
	tokens := verify.NewTokenService(testSigningKey, 1, "test")
	sink := &recordingSink{}

	auther := verify.NewAuthenticator(users, tokens).WithActivitySink(sink)

	return users, auther, sink
}

func TestAutherLogin(t *testing.T) {
	users, auther, sink := newAuthFixture(t)
	seedUser(t, users, "alice", "secret99", verify.RoleUser)
	ctx := context.Background()

	t.Run("unknown username", func(t *testing.T) {
		_, _, err := auther.Login(ctx, "nobody", "secret99")
		assert.ErrorIs(t, err, verify.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := auther.Login(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, verify.ErrInvalidCredentials)
	})

	t.Run("failures are indistinguishable", func(t *testing.T) {
		_, _, unknownErr := auther.Login(ctx, "nobody", "secret99")
		_, _, wrongErr := auther.Login(ctx, "alice", "wrong")
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})

	t.Run("correct credentials", func(t *testing.T) {
		token, identity, err := auther.Login(ctx, "alice", "secret99")
		require.NoError(t, err)

		assert.NotEmpty(t, token)
		assert.Equal(t, "alice", identity.Username())
		assert.Equal(t, verify.RoleUser, identity.Role())
	})

	t.Run("only the successful attempt is audited", func(t *testing.T) {
		actions := sink.actions()
		require.Len(t, actions, 1)
		assert.Equal(t, verify.ActionLogin, actions[0])
	})
}

func TestAutherChangePassword(t *testing.T) {
	users, auther, sink := newAuthFixture(t)
	seeded := seedUser(t, users, "bob", "original1", verify.RoleUser)
	ctx := context.Background()
	identity := identityOf(seeded)

	t.Run("nil identity", func(t *testing.T) {
		err := auther.ChangePassword(ctx, nil, "original1", "replacement1")
		assert.ErrorIs(t, err, verify.ErrUnauthenticated)
	})

	t.Run("rejects short new password", func(t *testing.T) {
		err := auther.ChangePassword(ctx, identity, "original1", "tiny")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6 characters")
	})

	t.Run("rejects wrong current password", func(t *testing.T) {
		err := auther.ChangePassword(ctx, identity, "not-it", "replacement1")
		assert.ErrorIs(t, err, verify.ErrInvalidCredentials)
	})

	t.Run("changes the password", func(t *testing.T) {
		require.NoError(t, auther.ChangePassword(ctx, identity, "original1", "replacement1"))

		_, _, err := auther.Login(ctx, "bob", "original1")
		assert.ErrorIs(t, err, verify.ErrInvalidCredentials)

		_, _, err = auther.Login(ctx, "bob", "replacement1")
		assert.NoError(t, err)
	})

	t.Run("audit trail holds the change and the login", func(t *testing.T) {
		actions := sink.actions()
		require.Len(t, actions, 2)
		assert.Equal(t, verify.ActionPasswordChange, actions[0])
		assert.Equal(t, verify.ActionLogin, actions[1])
	})
}
