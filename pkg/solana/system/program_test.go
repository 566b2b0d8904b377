package system

import (
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/echo-client/pkg/solana"
)

func TestCreateAccount(t *testing.T) {
	funder, address, owner := newKey(t), newKey(t), newKey(t)

	instruction := CreateAccount(funder, address, owner, 12345, 67890)
	require.Len(t, instruction.Data, createAccountDataSize)
	assert.EqualValues(t, commandCreateAccount, binary.LittleEndian.Uint32(instruction.Data))
	assert.EqualValues(t, 12345, binary.LittleEndian.Uint64(instruction.Data[4:]))
	assert.EqualValues(t, 67890, binary.LittleEndian.Uint64(instruction.Data[12:]))
	assert.EqualValues(t, owner, instruction.Data[20:])

	// Decode from the wire form to cover the full path
	var tx solana.Transaction
	require.NoError(t, tx.Unmarshal(solana.NewTransaction(funder, instruction).Marshal()))

	decompiled, err := DecompileCreateAccount(tx.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, funder, decompiled.Funder)
	assert.Equal(t, address, decompiled.Address)
	assert.Equal(t, owner, decompiled.Owner)
	assert.EqualValues(t, 12345, decompiled.Lamports)
	assert.EqualValues(t, 67890, decompiled.Size)
}

func TestDecompileCreateAccount_Invalid(t *testing.T) {
	funder := newKey(t)
	decompile := func(instruction solana.Instruction, index int) error {
		_, err := DecompileCreateAccount(solana.NewTransaction(funder, instruction).Message, index)
		return err
	}

	instruction := CreateAccount(funder, newKey(t), newKey(t), 1, 1)
	instruction.Accounts = instruction.Accounts[:1]
	err := decompile(instruction, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid number of accounts")

	instruction = CreateAccount(funder, newKey(t), newKey(t), 1, 1)
	binary.LittleEndian.PutUint32(instruction.Data, commandAssign)
	assert.Equal(t, solana.ErrIncorrectInstruction, decompile(instruction, 0))

	instruction.Data = make([]byte, 3)
	assert.Equal(t, solana.ErrIncorrectInstruction, decompile(instruction, 0))

	instruction = CreateAccount(funder, newKey(t), newKey(t), 1, 1)
	instruction.Data = instruction.Data[:20]
	err = decompile(instruction, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid instruction data size")

	instruction.Program = newKey(t)
	assert.Equal(t, solana.ErrIncorrectProgram, decompile(instruction, 0))

	err = decompile(instruction, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instruction doesn't exist")
}

func TestTransfer(t *testing.T) {
	from, to := newKey(t), newKey(t)

	instruction := Transfer(from, to, 5000)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)

	m := solana.NewTransaction(from, instruction).Message
	decompiled, err := DecompileTransfer(m, 0)
	require.NoError(t, err)
	assert.Equal(t, from, decompiled.From)
	assert.Equal(t, to, decompiled.To)
	assert.EqualValues(t, 5000, decompiled.Lamports)

	_, err = DecompileCreateAccount(m, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}
