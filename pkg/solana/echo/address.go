package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/echo-client/pkg/solana"
)

var (
	AuthorityPrefix      = []byte("authority")
	VendingMachinePrefix = []byte("vending machine")
)

type GetAuthorizedBufferAddressArgs struct {
	Program    ed25519.PublicKey
	Authority  ed25519.PublicKey
	BufferSeed uint64
}

func GetAuthorizedBufferAddress(args *GetAuthorizedBufferAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		args.Program,
		AuthorityPrefix,
		args.Authority,
		uint64ToBytes(args.BufferSeed),
	)
}

type GetVendingMachineAddressArgs struct {
	Program ed25519.PublicKey
	Mint    ed25519.PublicKey
	Price   uint64
}

func GetVendingMachineAddress(args *GetVendingMachineAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		args.Program,
		VendingMachinePrefix,
		args.Mint,
		uint64ToBytes(args.Price),
	)
}
