package token

import (
	"crypto/ed25519"

	"github.com/code-payments/echo-client/pkg/solana/binary"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L125
const AccountSize = 165

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L39
const MintAccountSize = 82

const optionSize = 4

type Account struct {
	// The mint associated with this account
	Mint ed25519.PublicKey
	// The owner of this account.
	Owner ed25519.PublicKey
	// The amount of tokens this account holds.
	Amount uint64
	// If set, then the 'DelegatedAmount' represents the amount
	// authorized by the delegate.
	Delegate ed25519.PublicKey
	/// The account's state
	State AccountState
	// If set, this is a native token, and the value logs the rent-exempt reserve. An Account
	// is required to be rent-exempt, so the value is used by the Processor to ensure that wrapped
	// SOL accounts do not drop below this threshold.
	IsNative *uint64
	// The amount delegated
	DelegatedAmount uint64
	// Optional authority to close the account.
	CloseAuthority ed25519.PublicKey
}

func (a *Account) Marshal() []byte {
	w := binary.NewWriter(AccountSize)
	w.Key(a.Mint)
	w.Key(a.Owner)
	w.Uint64(a.Amount)
	w.OptionalKey(a.Delegate, optionSize)
	w.Uint8(byte(a.State))
	w.OptionalUint64(a.IsNative, optionSize)
	w.Uint64(a.DelegatedAmount)
	w.OptionalKey(a.CloseAuthority, optionSize)
	return w.Bytes()
}

func (a *Account) Unmarshal(b []byte) bool {
	if len(b) != AccountSize {
		return false
	}

	r := binary.NewReader(b)
	a.Mint = r.Key()
	a.Owner = r.Key()
	a.Amount = r.Uint64()
	a.Delegate = r.OptionalKey(optionSize)
	a.State = AccountState(r.Uint8())
	a.IsNative = r.OptionalUint64(optionSize)
	a.DelegatedAmount = r.Uint64()
	a.CloseAuthority = r.OptionalKey(optionSize)
	return true
}

type Mint struct {
	// Optional authority used to mint new tokens. If unset, the supply is fixed.
	MintAuthority ed25519.PublicKey
	// Total supply of tokens.
	Supply   uint64
	Decimals byte
	// Whether the mint has been initialized.
	IsInitialized bool
	// Optional authority to freeze token accounts.
	FreezeAuthority ed25519.PublicKey
}

func (m *Mint) Marshal() []byte {
	w := binary.NewWriter(MintAccountSize)
	w.OptionalKey(m.MintAuthority, optionSize)
	w.Uint64(m.Supply)
	w.Uint8(m.Decimals)
	w.Bool(m.IsInitialized)
	w.OptionalKey(m.FreezeAuthority, optionSize)
	return w.Bytes()
}

func (m *Mint) Unmarshal(b []byte) bool {
	if len(b) != MintAccountSize {
		return false
	}

	r := binary.NewReader(b)
	m.MintAuthority = r.OptionalKey(optionSize)
	m.Supply = r.Uint64()
	m.Decimals = r.Uint8()
	m.IsInitialized = r.Bool()
	m.FreezeAuthority = r.OptionalKey(optionSize)
	return true
}
