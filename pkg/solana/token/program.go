package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/echo-client/pkg/solana"
	"github.com/code-payments/echo-client/pkg/solana/system"
)

// ProgramKey is the address of the SPL token program.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

// Command is the leading instruction data byte.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs
type Command byte

const (
	CommandInitializeMint    Command = 0
	CommandInitializeAccount Command = 1
	CommandTransfer          Command = 3
	CommandMintTo            Command = 7
	CommandBurn              Command = 8

	CommandUnknown = Command(math.MaxUint8)
)

// Token program error codes, surfaced as solana.CustomError.
const (
	ErrorNotRentExempt solana.CustomError = iota
	ErrorInsufficientFunds
	ErrorInvalidMint
	ErrorMintMismatch
	ErrorOwnerMismatch
	ErrorFixedSupply
	ErrorAlreadyInUse
	ErrorInvalidNumberOfProvidedSigners
	ErrorInvalidNumberOfRequiredSigners
	ErrorUninitializedState
	ErrorNativeNotSupported
	ErrorNonNativeHasBalance
	ErrorInvalidInstruction
	ErrorInvalidState
	ErrorOverflow
)

func GetCommand(m solana.Message, index int) (Command, error) {
	i, err := m.CompiledFor(index, ProgramKey)
	if err != nil {
		return CommandUnknown, err
	}
	if len(i.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}
	return Command(i.Data[0]), nil
}

// InitializeMint initializes mint with the given authorities. A nil
// freezeAuthority leaves the mint without one.
//
// Accounts:
//
//	0. `[writable]` The mint to initialize.
//	1. `[]` Rent sysvar
func InitializeMint(mint, mintAuthority, freezeAuthority ed25519.PublicKey, decimals byte) solana.Instruction {
	data := make([]byte, 0, 2+ed25519.PublicKeySize+1+ed25519.PublicKeySize)
	data = append(data, byte(CommandInitializeMint), decimals)
	data = append(data, mintAuthority...)
	if len(freezeAuthority) > 0 {
		data = append(data, 1)
		data = append(data, freezeAuthority...)
	} else {
		data = append(data, 0)
	}

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}

type DecompiledInitializeMint struct {
	Mint            ed25519.PublicKey
	Decimals        byte
	MintAuthority   ed25519.PublicKey
	FreezeAuthority ed25519.PublicKey
}

func DecompileInitializeMint(m solana.Message, index int) (*DecompiledInitializeMint, error) {
	i, err := m.CompiledFor(index, ProgramKey)
	if err != nil {
		return nil, err
	}
	if len(i.Data) == 0 || i.Data[0] != byte(CommandInitializeMint) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if !bytes.Equal(system.RentSysVar, m.Accounts[i.Accounts[1]]) {
		return nil, errors.New("invalid rent program")
	}

	const withoutFreeze = 2 + ed25519.PublicKeySize + 1
	switch {
	case len(i.Data) == withoutFreeze && i.Data[withoutFreeze-1] == 0:
	case len(i.Data) == withoutFreeze+ed25519.PublicKeySize && i.Data[withoutFreeze-1] == 1:
	default:
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	decompiled := &DecompiledInitializeMint{
		Mint:          m.Accounts[i.Accounts[0]],
		Decimals:      i.Data[1],
		MintAuthority: ed25519.PublicKey(i.Data[2 : 2+ed25519.PublicKeySize]),
	}
	if len(i.Data) > withoutFreeze {
		decompiled.FreezeAuthority = ed25519.PublicKey(i.Data[withoutFreeze:])
	}
	return decompiled, nil
}

// MintTo mints amount to dest, signed by the mint authority.
//
// Accounts:
//
//	0. `[writable]` The mint.
//	1. `[writable]` The account to mint tokens to.
//	2. `[signer]` The mint's minting authority.
func MintTo(mint, dest, authority ed25519.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		amountData(CommandMintTo, amount),
		solana.NewAccountMeta(mint, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(authority, true),
	)
}

// Burn destroys amount from account, signed by its owner.
//
// Accounts:
//
//	0. `[writable]` The account to burn from.
//	1. `[writable]` The token mint.
//	2. `[signer]` The account's owner.
func Burn(account, mint, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		amountData(CommandBurn, amount),
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

// DecompiledAmountInstruction is a MintTo or Burn instruction.
type DecompiledAmountInstruction struct {
	Command Command

	// Token is the mint for MintTo, and the burned account for Burn.
	Token ed25519.PublicKey
	// Counterparty is the destination for MintTo, and the mint for Burn.
	Counterparty ed25519.PublicKey
	Authority    ed25519.PublicKey
	Amount       uint64
}

func DecompileMintTo(m solana.Message, index int) (*DecompiledAmountInstruction, error) {
	return decompileAmountInstruction(m, index, CommandMintTo)
}

func DecompileBurn(m solana.Message, index int) (*DecompiledAmountInstruction, error) {
	return decompileAmountInstruction(m, index, CommandBurn)
}

func decompileAmountInstruction(m solana.Message, index int, command Command) (*DecompiledAmountInstruction, error) {
	i, err := m.CompiledFor(index, ProgramKey)
	if err != nil {
		return nil, err
	}
	if len(i.Data) == 0 || i.Data[0] != byte(command) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Data) != 1+8 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}
	if len(i.Accounts) != 3 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	return &DecompiledAmountInstruction{
		Command:      command,
		Token:        m.Accounts[i.Accounts[0]],
		Counterparty: m.Accounts[i.Accounts[1]],
		Authority:    m.Accounts[i.Accounts[2]],
		Amount:       binary.LittleEndian.Uint64(i.Data[1:]),
	}, nil
}

func amountData(command Command, amount uint64) []byte {
	data := make([]byte, 1+8)
	data[0] = byte(command)
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}
