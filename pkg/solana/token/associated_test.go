package token

import (
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/echo-client/pkg/solana"
	"github.com/code-payments/echo-client/pkg/solana/system"
)

func TestGetAssociatedAccount(t *testing.T) {
	// Derived with the reference spl-token implementation.
	wallet, err := base58.Decode("4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM")
	require.NoError(t, err)
	mint, err := base58.Decode("8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh")
	require.NoError(t, err)
	addr, err := base58.Decode("H7MQwEzt97tUJryocn3qaEoy2ymWstwyEk1i9Yv3EmuZ")
	require.NoError(t, err)

	actual, err := GetAssociatedAccount(wallet, mint)
	require.NoError(t, err)
	assert.EqualValues(t, addr, actual)
}

func TestCreateAssociatedAccount(t *testing.T) {
	keys := generateKeys(t, 3)
	subsidizer, wallet, mint := keys[0], keys[1], keys[2]

	expectedAddr, err := GetAssociatedAccount(wallet, mint)
	require.NoError(t, err)

	instruction, addr, err := CreateAssociatedTokenAccount(subsidizer, wallet, mint)
	require.NoError(t, err)
	assert.Equal(t, expectedAddr, addr)
	assert.Equal(t, []byte{commandCreate}, instruction.Data)

	require.Len(t, instruction.Accounts, 7)
	for i, account := range instruction.Accounts {
		assert.Equal(t, i == 0, account.IsSigner, i)
		assert.Equal(t, i < 2, account.IsWritable, i)
	}
	assert.EqualValues(t, system.ProgramKey[:], instruction.Accounts[4].PublicKey)
	assert.EqualValues(t, ProgramKey, instruction.Accounts[5].PublicKey)
	assert.EqualValues(t, system.RentSysVar, instruction.Accounts[6].PublicKey)

	decompiled, err := DecompileCreateAssociatedAccount(solana.NewTransaction(subsidizer, instruction).Message, 0)
	require.NoError(t, err)
	assert.Equal(t, subsidizer, decompiled.Subsidizer)
	assert.Equal(t, addr, decompiled.Address)
	assert.Equal(t, wallet, decompiled.Owner)
	assert.Equal(t, mint, decompiled.Mint)

	instruction.Accounts[6].PublicKey = wallet
	_, err = DecompileCreateAssociatedAccount(solana.NewTransaction(subsidizer, instruction).Message, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected program account at 6")
}

func TestDecompileCreateAssociatedAccount_NoData(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction, _, err := CreateAssociatedTokenAccount(keys[0], keys[1], keys[2])
	require.NoError(t, err)

	instruction.Data = nil
	decompiled, err := DecompileCreateAssociatedAccount(solana.NewTransaction(keys[0], instruction).Message, 0)
	require.NoError(t, err)
	assert.Equal(t, keys[1], decompiled.Owner)

	instruction.Data = []byte{1}
	_, err = DecompileCreateAssociatedAccount(solana.NewTransaction(keys[0], instruction).Message, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}
