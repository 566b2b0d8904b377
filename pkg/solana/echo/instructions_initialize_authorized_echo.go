package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/echo-client/pkg/solana"
)

type InitializeAuthorizedEchoInstructionArgs struct {
	BufferSeed uint64
	BufferSize uint64
}

type InitializeAuthorizedEchoInstructionAccounts struct {
	AuthorizedBuffer ed25519.PublicKey
	Authority        ed25519.PublicKey
}

func (*InitializeAuthorizedEchoInstructionArgs) InstructionType() InstructionType {
	return InstructionTypeInitializeAuthorizedEcho
}

func (*InitializeAuthorizedEchoInstructionArgs) size() int { return initArgsSize }

func (a *InitializeAuthorizedEchoInstructionArgs) marshal(dst []byte, offset *int) {
	putUint64(dst, a.BufferSeed, offset)
	putUint64(dst, a.BufferSize, offset)
}

func NewInitializeAuthorizedEchoInstruction(
	program ed25519.PublicKey,
	accounts *InitializeAuthorizedEchoInstructionAccounts,
	args *InitializeAuthorizedEchoInstructionArgs,
) (solana.Instruction, error) {
	return newInstruction(
		program,
		&InstructionAccounts{
			Buffer: accounts.AuthorizedBuffer,
			Payer:  accounts.Authority,
		},
		args,
	)
}
