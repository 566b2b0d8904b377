package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"hash"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Expected values generated with the Solana SDK.
func TestCreateProgramAddress(t *testing.T) {
	// The typo is part of the upstream test vector
	seedKey := mustDecode(t, "SeedPubey1111111111111111111111111111111111")
	program := mustDecode(t, "BPFLoader1111111111111111111111111111111111")

	for expected, seeds := range map[string][][]byte{
		"3gF2KMe9KiC6FNVBmfg9i267aMPvK37FewCip4eGBFcT": {{}, {1}},
		"7ytmC1nT1xY4RfxCV2ZgyA7UakC93do5ZdyhdF3EtPj7": {[]byte("☉")},
		"HwRVBufQ4haG5XSgpspwKtNd3PC9GM9m1196uJW36vds": {[]byte("Talking"), []byte("Squirrels")},
		"GUs5qLUfsEHkcMB9T38vjr18ypEhRuNWiePW2LoK4E3K": {seedKey},
	} {
		address, err := CreateProgramAddress(program, seeds...)
		require.NoError(t, err)
		assert.Equal(t, expected, base58.Encode(address))
	}

	_, err := CreateProgramAddress(program, make([]byte, maxSeedLength))
	assert.NoError(t, err)
	_, err = CreateProgramAddress(program, []byte("short"), make([]byte, maxSeedLength+1))
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)
	_, err = CreateProgramAddress(program, make([][]byte, maxSeeds+1)...)
	assert.Equal(t, ErrTooManySeeds, err)
}

func TestCreateProgramAddress_OnCurve(t *testing.T) {
	onCurve, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	withFixedHash(t, onCurve)

	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	_, err = CreateProgramAddress(program, []byte("echo"))
	assert.Equal(t, ErrInvalidPublicKey, err)

	// No bump can move the address off the curve
	address, bump, err := FindProgramAddressAndBump(program, []byte("echo"))
	assert.Equal(t, ErrAddressDerivationExhausted, err)
	assert.Nil(t, address)
	assert.Zero(t, bump)
}

func TestFindProgramAddress_Ref(t *testing.T) {
	for program, expected := range map[string]string{
		"4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM":  "Bn9pAWUXWc5Kd849xTkQcHqiCbHUEizLFn4r5Cf8XYnd",
		"8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh":  "oDvUHiiGdMo31xYzjefAzUekWH8EbCKrxgs2FkyTs1S",
		"CiDwVBFgWV9E5MvXWoLgnEgn2hK7rJikbvfWavzAQz3":  "B2vBn2bmF9GuaGkebrm8oUqDC34pE6m4bagjNcVE6msv",
		"wei3wABWhvzigge84jFXySCd8untJRhB9KS3jLw6GFq":  "8jztcAvddJNqK1ZjwcRkfWYAkfJW7dBbwoxZt7HSNg1G",
		"21Z7hRtGQYRi8NocdZzhRuBRt9UZbFXbm1dKYvevp4vB": "9PPbRbNP3rqwzk16r7NDBzk1YDfo9EpWDWSqCYLn5eaF",
		"2M59vuWgsiuHAqQVB6KvuXuaBCJR8138gMAm4uCuR6Du": "E5dLtHAM353EPnHyuZ32sKREn26VW4Y8bzb2KQJTBHQh",
	} {
		actual, err := FindProgramAddress(mustDecode(t, program), []byte("Lil'"), []byte("Bits"))
		require.NoError(t, err)
		assert.Equal(t, expected, base58.Encode(actual))
	}
}

func TestFindProgramAddressAndBump(t *testing.T) {
	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	seeds := [][]byte{[]byte("authority"), program, {0x8b, 0x08, 0, 0, 0, 0, 0, 0}}

	address, bump, err := FindProgramAddressAndBump(program, seeds...)
	require.NoError(t, err)

	again, againBump, err := FindProgramAddressAndBump(program, seeds...)
	require.NoError(t, err)
	assert.Equal(t, address, again)
	assert.Equal(t, bump, againBump)

	// The bump is the final seed
	actual, err := CreateProgramAddress(program, append(seeds, []byte{bump})...)
	require.NoError(t, err)
	assert.Equal(t, address, actual)
	assert.Len(t, seeds, 3)
}

// fixedHash hashes every input to the same digest.
type fixedHash struct {
	hash.Hash
	digest []byte
}

func (f fixedHash) Sum([]byte) []byte { return f.digest }

func withFixedHash(t *testing.T, digest []byte) {
	programHashCtor = func() hash.Hash {
		return fixedHash{Hash: sha256.New(), digest: digest}
	}
	t.Cleanup(func() { programHashCtor = sha256.New })
}

func mustDecode(t *testing.T, encoded string) []byte {
	decoded, err := base58.Decode(encoded)
	require.NoError(t, err)
	return decoded
}
