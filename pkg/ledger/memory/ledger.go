package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/echo-client/pkg/ledger"
	"github.com/code-payments/echo-client/pkg/solana"
	"github.com/code-payments/echo-client/pkg/solana/system"
	"github.com/code-payments/echo-client/pkg/solana/token"
)

const (
	// LamportsPerSignature is the fee charged for every required signature.
	LamportsPerSignature = 5000

	// Rent::default(): 3480 lamports per byte-year, two years, 128 bytes of
	// account metadata.
	lamportsPerByteYear     = 3480
	exemptionThresholdYears = 2
	accountStorageOverhead  = 128
)

var errDeveloperInduced = errors.New("in memory ledger: developer induced error")

type account struct {
	lamports uint64
	owner    ed25519.PublicKey
	data     []byte
}

func (a *account) clone() *account {
	return &account{
		lamports: a.lamports,
		owner:    a.owner,
		data:     append([]byte(nil), a.data...),
	}
}

type state map[string]*account

func (s state) clone() state {
	cloned := make(state, len(s))
	for k, v := range s {
		cloned[k] = v.clone()
	}
	return cloned
}

// Ledger is an in memory ledger that executes the system, token, associated
// token account and echo programs. Transactions are applied atomically and
// confirm immediately. It is used for testing.
type Ledger struct {
	mu sync.Mutex

	program ed25519.PublicKey

	accounts    state
	blockhash   solana.Blockhash
	blockhashes map[solana.Blockhash]struct{}
	processed   map[solana.Signature]error
	submitted   []solana.Transaction
	airdrops    map[solana.Signature]struct{}
	nonce       uint64

	err               error
	dropConfirmations bool
}

// NewLedger returns a new in memory ledger with the echo program deployed at
// program.
func NewLedger(program ed25519.PublicKey) *Ledger {
	l := &Ledger{
		program:     program,
		accounts:    make(state),
		blockhashes: make(map[solana.Blockhash]struct{}),
		processed:   make(map[solana.Signature]error),
		airdrops:    make(map[solana.Signature]struct{}),
	}
	l.advanceBlockhash()
	return l
}

// GetMinimumBalanceForRentExemption implements ledger.Ledger.GetMinimumBalanceForRentExemption
func (l *Ledger) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkInduced(ctx); err != nil {
		return 0, err
	}
	return rentExemptBalance(size), nil
}

// GetLatestBlockhash implements ledger.Ledger.GetLatestBlockhash
func (l *Ledger) GetLatestBlockhash(ctx context.Context) (solana.Blockhash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkInduced(ctx); err != nil {
		return solana.Blockhash{}, err
	}
	return l.blockhash, nil
}

// SubmitAndConfirm implements ledger.Ledger.SubmitAndConfirm
func (l *Ledger) SubmitAndConfirm(ctx context.Context, txn *solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkInduced(ctx); err != nil {
		return solana.Signature{}, err
	}
	if len(txn.Signatures) == 0 {
		return solana.Signature{}, solana.NewTransactionError(solana.TransactionErrorMissingSignatureForFee)
	}

	sig := txn.Signature()
	if _, ok := l.processed[sig]; ok {
		return sig, solana.NewTransactionError(solana.TransactionErrorDuplicateSignature)
	}
	if err := txn.VerifySignatures(); err != nil {
		return sig, solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}
	if _, ok := l.blockhashes[txn.Message.RecentBlockhash]; !ok {
		return sig, solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound)
	}

	payer, ok := l.accounts[string(txn.Message.Accounts[0])]
	fee := uint64(txn.Message.Header.NumSignatures) * LamportsPerSignature
	if !ok || payer.lamports < fee {
		return sig, solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
	}

	l.submitted = append(l.submitted, *txn)

	// The fee is charged whether or not the instructions succeed.
	payer.lamports -= fee

	pending := l.accounts.clone()
	err := newExecutor(l.program, pending, txn.Message).execute()
	l.processed[sig] = err
	if err != nil {
		return sig, err
	}

	l.accounts = pending
	l.advanceBlockhash()

	if l.dropConfirmations {
		return sig, errors.Wrapf(ledger.ErrConfirmationTimeout, "signature %s", sig.String())
	}
	return sig, nil
}

// GetAccountData implements ledger.Ledger.GetAccountData
func (l *Ledger) GetAccountData(ctx context.Context, pub ed25519.PublicKey, _ solana.Commitment) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkInduced(ctx); err != nil {
		return nil, err
	}

	a, ok := l.accounts[string(pub)]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	return append([]byte(nil), a.data...), nil
}

// GetTokenBalance implements ledger.Ledger.GetTokenBalance
func (l *Ledger) GetTokenBalance(ctx context.Context, pub ed25519.PublicKey, _ solana.Commitment) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkInduced(ctx); err != nil {
		return 0, err
	}

	a, ok := l.accounts[string(pub)]
	if !ok {
		return 0, ledger.ErrAccountNotFound
	}

	var tokenAccount token.Account
	if !bytes.Equal(a.owner, token.ProgramKey) || !tokenAccount.Unmarshal(a.data) {
		return 0, solana.ErrNoBalance
	}
	return tokenAccount.Amount, nil
}

// RequestAirdrop implements ledger.Ledger.RequestAirdrop
func (l *Ledger) RequestAirdrop(ctx context.Context, pub ed25519.PublicKey, lamports uint64) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkInduced(ctx); err != nil {
		return solana.Signature{}, err
	}

	a, ok := l.accounts[string(pub)]
	if !ok {
		a = &account{owner: system.ProgramKey[:]}
		l.accounts[string(pub)] = a
	}
	a.lamports += lamports

	l.nonce++
	var sig solana.Signature
	seed := append([]byte("airdrop"), pub...)
	h := sha256.Sum256(binary.LittleEndian.AppendUint64(seed, l.nonce))
	copy(sig[:], h[:])
	l.airdrops[sig] = struct{}{}

	return sig, nil
}

// ConfirmAirdrop implements ledger.Ledger.ConfirmAirdrop
func (l *Ledger) ConfirmAirdrop(ctx context.Context, sig solana.Signature, _ solana.Commitment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkInduced(ctx); err != nil {
		return err
	}
	if _, ok := l.airdrops[sig]; !ok {
		return errors.Wrapf(ledger.ErrConfirmationTimeout, "signature %s", sig.String())
	}
	if l.dropConfirmations {
		return errors.Wrapf(ledger.ErrConfirmationTimeout, "signature %s", sig.String())
	}
	return nil
}

// GetBalance returns the lamports held by an account.
func (l *Ledger) GetBalance(pub ed25519.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.accounts[string(pub)]; ok {
		return a.lamports
	}
	return 0
}

// GetOwner returns the program owning an account, or nil if it doesn't exist.
func (l *Ledger) GetOwner(pub ed25519.PublicKey) ed25519.PublicKey {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.accounts[string(pub)]; ok {
		return a.owner
	}
	return nil
}

// Submitted returns every transaction that passed fee checks, in order.
func (l *Ledger) Submitted() []solana.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]solana.Transaction(nil), l.submitted...)
}

// InduceErrors instructs the ledger to fail every call.
func (l *Ledger) InduceErrors() {
	l.mu.Lock()
	l.err = errDeveloperInduced
	l.mu.Unlock()
}

// StopInducingErrors stops the ledger from failing calls.
func (l *Ledger) StopInducingErrors() {
	l.mu.Lock()
	l.err = nil
	l.mu.Unlock()
}

// DropConfirmations makes subsequent transactions and airdrops land without
// being reported as confirmed.
func (l *Ledger) DropConfirmations() {
	l.mu.Lock()
	l.dropConfirmations = true
	l.mu.Unlock()
}

func (l *Ledger) checkInduced(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.err
}

func (l *Ledger) advanceBlockhash() {
	l.nonce++
	l.blockhash = sha256.Sum256(binary.LittleEndian.AppendUint64([]byte("blockhash"), l.nonce))
	l.blockhashes[l.blockhash] = struct{}{}
}

func rentExemptBalance(size uint64) uint64 {
	return (accountStorageOverhead + size) * lamportsPerByteYear * exemptionThresholdYears
}
