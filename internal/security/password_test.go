package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2", hash)
	assert.NoError(t, CheckPassword(hash, "hunter2"))
	assert.ErrorIs(t, CheckPassword(hash, "hunter3"), ErrMismatch)
}

func TestCheckPassword_RejectsNonBcryptDigest(t *testing.T) {
	err := CheckPassword("plaintext", "plaintext")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}
