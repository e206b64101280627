package verify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verify "github.com/goliatone/go-verify"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes and verifies", func(t *testing.T) {
		hash, err := verify.HashPassword("secret99")
		require.NoError(t, err)
		require.NotEmpty(t, hash)
		assert.NotEqual(t, "secret99", hash)

		assert.NoError(t, verify.ComparePasswordAndHash("secret99", hash))
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		hash, err := verify.HashPassword("secret99")
		require.NoError(t, err)

		assert.Error(t, verify.ComparePasswordAndHash("not-it", hash))
	})

	t.Run("hashes are salted", func(t *testing.T) {
		first, err := verify.HashPassword("secret99")
		require.NoError(t, err)
		second, err := verify.HashPassword("secret99")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}
