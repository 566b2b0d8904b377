package echo

import (
	"crypto/ed25519"
	"errors"

	"github.com/code-payments/echo-client/pkg/solana"
	"github.com/code-payments/echo-client/pkg/solana/system"
	"github.com/code-payments/echo-client/pkg/solana/token"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrUnknownOpcode          = errors.New("unknown opcode")
	ErrMissingAccount         = errors.New("missing instruction account")
	ErrMessageTooLong         = errors.New("message too long")
)

// Custom errors returned by the echo program.
const (
	ErrorBufferNonZero solana.CustomError = iota
)

var (
	SYSTEM_PROGRAM_ID    = ed25519.PublicKey(system.ProgramKey[:])
	SPL_TOKEN_PROGRAM_ID = token.ProgramKey
)
