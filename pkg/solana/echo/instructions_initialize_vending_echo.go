package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/echo-client/pkg/solana"
)

type InitializeVendingEchoInstructionArgs struct {
	Price      uint64
	BufferSize uint64
}

type InitializeVendingEchoInstructionAccounts struct {
	VendingMachine ed25519.PublicKey
	Mint           ed25519.PublicKey
	Payer          ed25519.PublicKey
}

func (*InitializeVendingEchoInstructionArgs) InstructionType() InstructionType {
	return InstructionTypeInitializeVendingEcho
}

func (*InitializeVendingEchoInstructionArgs) size() int { return initArgsSize }

func (a *InitializeVendingEchoInstructionArgs) marshal(dst []byte, offset *int) {
	putUint64(dst, a.Price, offset)
	putUint64(dst, a.BufferSize, offset)
}

func NewInitializeVendingEchoInstruction(
	program ed25519.PublicKey,
	accounts *InitializeVendingEchoInstructionAccounts,
	args *InitializeVendingEchoInstructionArgs,
) (solana.Instruction, error) {
	return newInstruction(
		program,
		&InstructionAccounts{
			Buffer: accounts.VendingMachine,
			Mint:   accounts.Mint,
			Payer:  accounts.Payer,
		},
		args,
	)
}
