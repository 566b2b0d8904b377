package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/echo-client/pkg/solana"
)

type AuthorizedEchoInstructionArgs struct {
	Data []byte
}

type AuthorizedEchoInstructionAccounts struct {
	AuthorizedBuffer ed25519.PublicKey
	Authority        ed25519.PublicKey
}

func (*AuthorizedEchoInstructionArgs) InstructionType() InstructionType {
	return InstructionTypeAuthorizedEcho
}

func (a *AuthorizedEchoInstructionArgs) size() int { return messageSize(a.Data) }
func (a *AuthorizedEchoInstructionArgs) message() []byte { return a.Data }

func (a *AuthorizedEchoInstructionArgs) marshal(dst []byte, offset *int) {
	putMessage(dst, a.Data, offset)
}

// NewAuthorizedEchoInstruction writes a message into an initialized authorized
// buffer. The program re-derives the buffer address from the authority and
// the seed it stored at initialization.
func NewAuthorizedEchoInstruction(
	program ed25519.PublicKey,
	accounts *AuthorizedEchoInstructionAccounts,
	args *AuthorizedEchoInstructionArgs,
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
