package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta is an account referenced by an instruction, along with the
// permissions the instruction needs on it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	isPayer   bool
	isProgram bool
}

// NewAccountMeta references a writable account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner, IsWritable: true}
}

// NewReadonlyAccountMeta references a read-only account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner}
}

// merge grants m any permission other holds for the same account.
func (m *AccountMeta) merge(other AccountMeta) {
	m.IsSigner = m.IsSigner || other.IsSigner
	m.IsWritable = m.IsWritable || other.IsWritable
	m.isPayer = m.isPayer || other.isPayer
}

// sortsBefore orders accounts the way the runtime expects them in a message:
// fee payer, then signers, then writable accounts, with invoked programs last.
// Ties are broken by key so compilation is deterministic.
//
// Reference: https://docs.solana.com/developing/programming-model/transactions#account-addresses-format
func (m AccountMeta) sortsBefore(other AccountMeta) bool {
	switch {
	case m.isPayer != other.isPayer:
		return m.isPayer
	case m.isProgram != other.isProgram:
		return other.isProgram
	case m.IsSigner != other.IsSigner:
		return m.IsSigner
	case m.IsWritable != other.IsWritable:
		return m.IsWritable
	default:
		return bytes.Compare(m.PublicKey, other.PublicKey) < 0
	}
}

// Instruction is a single program invocation.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction is an Instruction whose program and accounts have been
// replaced by indexes into the message account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}

// CompiledFor returns the instruction at index after checking that it invokes
// program and that all of its account indexes resolve.
func (m Message) CompiledFor(index int, program ed25519.PublicKey) (CompiledInstruction, error) {
	if index < 0 || index >= len(m.Instructions) {
		return CompiledInstruction{}, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if int(i.ProgramIndex) >= len(m.Accounts) || !bytes.Equal(m.Accounts[i.ProgramIndex], program) {
		return CompiledInstruction{}, ErrIncorrectProgram
	}
	for _, account := range i.Accounts {
		if int(account) >= len(m.Accounts) {
			return CompiledInstruction{}, errors.Errorf("account index %d out of range", account)
		}
	}
	return i, nil
}
