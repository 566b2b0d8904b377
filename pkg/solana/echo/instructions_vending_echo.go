package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/echo-client/pkg/solana"
)

type VendingEchoInstructionArgs struct {
	Data []byte
}

type VendingEchoInstructionAccounts struct {
	VendingMachine    ed25519.PublicKey
	Payer             ed25519.PublicKey
	PayerTokenAccount ed25519.PublicKey
	Mint              ed25519.PublicKey
}

func (*VendingEchoInstructionArgs) InstructionType() InstructionType {
	return InstructionTypeVendingEcho
}

func (a *VendingEchoInstructionArgs) size() int { return messageSize(a.Data) }
func (a *VendingEchoInstructionArgs) message() []byte { return a.Data }

func (a *VendingEchoInstructionArgs) marshal(dst []byte, offset *int) {
	putMessage(dst, a.Data, offset)
}

// NewVendingEchoInstruction writes a message into a vending machine buffer.
// The program burns the machine's price from the payer's token account.
func NewVendingEchoInstruction(
	program ed25519.PublicKey,
	accounts *VendingEchoInstructionAccounts,
	args *VendingEchoInstructionArgs,
) (solana.Instruction, error) {
	return newInstruction(
		program,
		&InstructionAccounts{
			Buffer:            accounts.VendingMachine,
			Payer:             accounts.Payer,
			PayerTokenAccount: accounts.PayerTokenAccount,
			Mint:              accounts.Mint,
		},
		args,
	)
}
