package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerators(t *testing.T) {
	keys := GenerateSolanaKeys(t, 3)
	require.Len(t, keys, 3)
	for _, key := range keys {
		assert.Len(t, key, ed25519.PublicKeySize)
	}
	assert.NotEqual(t, keys[0], keys[1])

	assert.Len(t, GenerateSolanaKeypair(t), ed25519.PrivateKeySize)

	account := NewRandomAccount(t)
	assert.True(t, account.CanSign())
	assert.True(t, account.IsOnCurve())
}
