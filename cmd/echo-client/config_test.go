package main

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeypair(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	ints := make([]int, len(priv))
	for i, b := range priv {
		ints[i] = int(b)
	}
	encoded, err := json.Marshal(ints)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "id.json")
	require.NoError(t, os.WriteFile(path, encoded, 0600))

	account, err := loadKeypair(path)
	require.NoError(t, err)
	assert.True(t, account.CanSign())
	assert.EqualValues(t, pub, account.PublicKey().ToBytes())

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte("[1, 256]"), 0600))
	_, err = loadKeypair(invalid)
	assert.Error(t, err)

	_, err = loadKeypair(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
