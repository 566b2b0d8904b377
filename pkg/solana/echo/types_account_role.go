package echo

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/echo-client/pkg/solana"
)

// AccountRole names the part an account plays in an echo instruction.
type AccountRole uint8

const (
	AccountRoleBuffer AccountRole = iota
	AccountRolePayer
	AccountRoleMint
	AccountRolePayerTokenAccount
	AccountRoleSystemProgram
	AccountRoleTokenProgram
)

func (r AccountRole) String() string {
	switch r {
	case AccountRoleBuffer:
		return "buffer"
	case AccountRolePayer:
		return "payer"
	case AccountRoleMint:
		return "mint"
	case AccountRolePayerTokenAccount:
		return "payer_token_account"
	case AccountRoleSystemProgram:
		return "system_program"
	case AccountRoleTokenProgram:
		return "token_program"
	}
	return "unknown"
}

type AccountRoleDescriptor struct {
	Role       AccountRole
	IsSigner   bool
	IsWritable bool
}

// The program parses accounts by position, so order here is part of its ABI.
var accountLayouts = map[InstructionType][]AccountRoleDescriptor{
	InstructionTypeEcho: {
		{Role: AccountRoleBuffer, IsWritable: true},
	},
	InstructionTypeInitializeAuthorizedEcho: {
		{Role: AccountRoleBuffer, IsWritable: true},
		{Role: AccountRolePayer, IsSigner: true},
		{Role: AccountRoleSystemProgram},
	},
	InstructionTypeAuthorizedEcho: {
		{Role: AccountRoleBuffer, IsWritable: true},
		{Role: AccountRolePayer, IsSigner: true},
	},
	InstructionTypeInitializeVendingEcho: {
		{Role: AccountRoleBuffer, IsWritable: true},
		{Role: AccountRoleMint},
		{Role: AccountRolePayer, IsSigner: true},
		{Role: AccountRoleSystemProgram},
	},
	InstructionTypeVendingEcho: {
		{Role: AccountRoleBuffer, IsWritable: true},
		{Role: AccountRolePayer, IsSigner: true},
		{Role: AccountRolePayerTokenAccount, IsWritable: true},
		{Role: AccountRoleMint, IsWritable: true},
		{Role: AccountRoleTokenProgram},
	},
}

// GetAccountLayout returns a copy of the ordered account roles for the
// instruction type.
func GetAccountLayout(instructionType InstructionType) ([]AccountRoleDescriptor, error) {
	layout, ok := accountLayouts[instructionType]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOpcode, "opcode %d", instructionType)
	}

	res := make([]AccountRoleDescriptor, len(layout))
	copy(res, layout)
	return res, nil
}

// InstructionAccounts holds the participants of an echo instruction. Only the
// fields named by the instruction's layout are read. Program accounts are
// filled from constants.
type InstructionAccounts struct {
	Buffer            ed25519.PublicKey
	Payer             ed25519.PublicKey
	Mint              ed25519.PublicKey
	PayerTokenAccount ed25519.PublicKey
}

func (a *InstructionAccounts) get(role AccountRole) ed25519.PublicKey {
	switch role {
	case AccountRoleBuffer:
		return a.Buffer
	case AccountRolePayer:
		return a.Payer
	case AccountRoleMint:
		return a.Mint
	case AccountRolePayerTokenAccount:
		return a.PayerTokenAccount
	case AccountRoleSystemProgram:
		return SYSTEM_PROGRAM_ID
	case AccountRoleTokenProgram:
		return SPL_TOKEN_PROGRAM_ID
	}
	return nil
}

func (a *InstructionAccounts) set(role AccountRole, key ed25519.PublicKey) {
	switch role {
	case AccountRoleBuffer:
		a.Buffer = key
	case AccountRolePayer:
		a.Payer = key
	case AccountRoleMint:
		a.Mint = key
	case AccountRolePayerTokenAccount:
		a.PayerTokenAccount = key
	}
}

// BuildAccountMetas lays out accounts for the instruction type. No partial
// list is returned on error.
func BuildAccountMetas(instructionType InstructionType, accounts *InstructionAccounts) ([]solana.AccountMeta, error) {
	layout, err := GetAccountLayout(instructionType)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = &InstructionAccounts{}
	}

	metas := make([]solana.AccountMeta, len(layout))
	for i, descriptor := range layout {
		key := accounts.get(descriptor.Role)
		if len(key) != ed25519.PublicKeySize {
			return nil, errors.Wrapf(ErrMissingAccount, "%s account for %s", descriptor.Role, instructionType)
		}

		metas[i] = solana.AccountMeta{
			PublicKey:  key,
			IsSigner:   descriptor.IsSigner,
			IsWritable: descriptor.IsWritable,
		}
	}
	return metas, nil
}
