package ledger

import (
	"context"
	"crypto/ed25519"
	"errors"

	"github.com/code-payments/echo-client/pkg/solana"
)

var (
	ErrAccountNotFound = errors.New("account not found")

	// ErrConfirmationTimeout indicates a submitted transaction was not observed
	// at the requested commitment in time. Its outcome is unknown.
	ErrConfirmationTimeout = errors.New("confirmation timeout")
)

// Ledger is the set of network operations the echo flows depend on.
type Ledger interface {
	// GetMinimumBalanceForRentExemption returns the lamports an account of size
	// bytes must hold to be rent exempt.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)

	GetLatestBlockhash(ctx context.Context) (solana.Blockhash, error)

	// SubmitAndConfirm submits a signed transaction and blocks until it reaches
	// commitment. A transaction rejected by the ledger is returned as a
	// *solana.TransactionError. No retries are performed.
	SubmitAndConfirm(ctx context.Context, txn *solana.Transaction, commitment solana.Commitment) (solana.Signature, error)

	// GetAccountData returns ErrAccountNotFound if the account doesn't exist.
	GetAccountData(ctx context.Context, account ed25519.PublicKey, commitment solana.Commitment) ([]byte, error)

	// GetTokenBalance returns the raw token amount held by a token account.
	GetTokenBalance(ctx context.Context, account ed25519.PublicKey, commitment solana.Commitment) (uint64, error)

	RequestAirdrop(ctx context.Context, account ed25519.PublicKey, lamports uint64) (solana.Signature, error)
	ConfirmAirdrop(ctx context.Context, sig solana.Signature, commitment solana.Commitment) error
}
