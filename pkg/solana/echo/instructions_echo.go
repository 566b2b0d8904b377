package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/echo-client/pkg/solana"
)

type EchoInstructionArgs struct {
	Data []byte
}

type EchoInstructionAccounts struct {
	Buffer ed25519.PublicKey
}

func (*EchoInstructionArgs) InstructionType() InstructionType { return InstructionTypeEcho }

func (a *EchoInstructionArgs) size() int { return messageSize(a.Data) }
func (a *EchoInstructionArgs) message() []byte { return a.Data }

func (a *EchoInstructionArgs) marshal(dst []byte, offset *int) {
	putMessage(dst, a.Data, offset)
}

// NewEchoInstruction writes a message into a plain, zeroed buffer owned by the
// program.
func NewEchoInstruction(
	program ed25519.PublicKey,
	accounts *EchoInstructionAccounts,
	args *EchoInstructionArgs,
) (solana.Instruction, error) {
	return newInstruction(
		program,
		&InstructionAccounts{
			Buffer: accounts.Buffer,
		},
		args,
	)
}
