package echo

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/echo-client/pkg/solana"
)

const (
	messageLengthSize = 4
	initArgsSize      = (8 + // buffer_seed or price
		8) // buffer_size
)

// InstructionArgs is the closed set of echo program instructions. Only the
// *InstructionArgs types in this package implement it.
type InstructionArgs interface {
	InstructionType() InstructionType

	size() int
	marshal(dst []byte, offset *int)
}

// EncodeInstructionData serializes args into the program's wire format: the
// instruction type byte followed by little-endian fields with no padding.
func EncodeInstructionData(args InstructionArgs) ([]byte, error) {
	if args == nil {
		return nil, ErrInvalidInstructionData
	}
	if m, ok := args.(messageArgs); ok && uint64(len(m.message())) > math.MaxUint32 {
		return nil, ErrMessageTooLong
	}

	var offset int
	data := make([]byte, 1+args.size())

	putInstructionType(data, args.InstructionType(), &offset)
	args.marshal(data, &offset)

	return data, nil
}

// DecodeInstructionData is the inverse of EncodeInstructionData. The payload
// must be consumed exactly.
func DecodeInstructionData(data []byte) (InstructionArgs, error) {
	if len(data) == 0 {
		return nil, ErrInvalidInstructionData
	}

	var offset int
	var instructionType InstructionType
	getInstructionType(data, &instructionType, &offset)
	if !instructionType.IsValid() {
		return nil, errors.Wrapf(ErrUnknownOpcode, "opcode %d", instructionType)
	}

	switch instructionType {
	case InstructionTypeEcho:
		message, err := getMessage(data, &offset)
		if err != nil {
			return nil, err
		}
		return &EchoInstructionArgs{Data: message}, nil
	case InstructionTypeAuthorizedEcho:
		message, err := getMessage(data, &offset)
		if err != nil {
			return nil, err
		}
		return &AuthorizedEchoInstructionArgs{Data: message}, nil
	case InstructionTypeVendingEcho:
		message, err := getMessage(data, &offset)
		if err != nil {
			return nil, err
		}
		return &VendingEchoInstructionArgs{Data: message}, nil
	case InstructionTypeInitializeAuthorizedEcho:
		if len(data) != 1+initArgsSize {
			return nil, errors.Wrapf(ErrInvalidInstructionData, "expected %d bytes, got %d", 1+initArgsSize, len(data))
		}
		var args InitializeAuthorizedEchoInstructionArgs
		getUint64(data, &args.BufferSeed, &offset)
		getUint64(data, &args.BufferSize, &offset)
		return &args, nil
	case InstructionTypeInitializeVendingEcho:
		if len(data) != 1+initArgsSize {
			return nil, errors.Wrapf(ErrInvalidInstructionData, "expected %d bytes, got %d", 1+initArgsSize, len(data))
		}
		var args InitializeVendingEchoInstructionArgs
		getUint64(data, &args.Price, &offset)
		getUint64(data, &args.BufferSize, &offset)
		return &args, nil
	}

	return nil, errors.Wrapf(ErrUnknownOpcode, "opcode %d", instructionType)
}

func getMessage(data []byte, offset *int) ([]byte, error) {
	if len(data) < *offset+messageLengthSize {
		return nil, errors.Wrap(ErrInvalidInstructionData, "missing message length")
	}

	var length uint32
	getUint32(data, &length, offset)

	if uint64(len(data)-*offset) != uint64(length) {
		return nil, errors.Wrapf(ErrInvalidInstructionData, "declared message length %d, got %d bytes", length, len(data)-*offset)
	}

	var message []byte
	getBytes(data, &message, int(length), offset)
	return message, nil
}

type messageArgs interface {
	message() []byte
}

func messageSize(message []byte) int {
	return messageLengthSize + len(message)
}

func putMessage(dst []byte, message []byte, offset *int) {
	putUint32(dst, uint32(len(message)), offset)
	putBytes(dst, message, offset)
}

// newInstruction encodes args and lays out accounts according to the
// instruction's account table.
func newInstruction(program ed25519.PublicKey, accounts *InstructionAccounts, args InstructionArgs) (solana.Instruction, error) {
	if len(program) != ed25519.PublicKeySize {
		return solana.Instruction{}, ErrInvalidProgram
	}

	data, err := EncodeInstructionData(args)
	if err != nil {
		return solana.Instruction{}, err
	}

	metas, err := BuildAccountMetas(args.InstructionType(), accounts)
	if err != nil {
		return solana.Instruction{}, err
	}

	return solana.NewInstruction(program, data, metas...), nil
}

// DecompiledInstruction is an echo instruction recovered from a compiled
// message.
type DecompiledInstruction struct {
	Args     InstructionArgs
	Accounts *InstructionAccounts
}

// DecompileInstruction decodes the instruction at index, verifying it targets
// program and carries the accounts its type requires.
func DecompileInstruction(m solana.Message, index int, program ed25519.PublicKey) (*DecompiledInstruction, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], program) {
		return nil, solana.ErrIncorrectProgram
	}

	args, err := DecodeInstructionData(i.Data)
	if err != nil {
		return nil, err
	}

	layout, err := GetAccountLayout(args.InstructionType())
	if err != nil {
		return nil, err
	}
	if len(i.Accounts) != len(layout) {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	accounts := &InstructionAccounts{}
	for position, descriptor := range layout {
		key := m.Accounts[i.Accounts[position]]

		switch descriptor.Role {
		case AccountRoleSystemProgram:
			if !bytes.Equal(key, SYSTEM_PROGRAM_ID) {
				return nil, errors.New("invalid system program")
			}
		case AccountRoleTokenProgram:
			if !bytes.Equal(key, SPL_TOKEN_PROGRAM_ID) {
				return nil, errors.New("invalid token program")
			}
		default:
			accounts.set(descriptor.Role, key)
		}
	}

	return &DecompiledInstruction{
		Args:     args,
		Accounts: accounts,
	}, nil
}
