package ledger

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/echo-client/pkg/cache"
	"github.com/code-payments/echo-client/pkg/solana"
	"github.com/code-payments/echo-client/pkg/testutil"
)

func TestRPCLedger_SubmitAndConfirm(t *testing.T) {
	env := setupRPCTest(t)

	zero := 0
	env.client.statuses = []*solana.SignatureStatus{
		nil,
		{Confirmations: &zero, ConfirmationStatus: "processed"},
		{Confirmations: &zero, ConfirmationStatus: "confirmed"},
	}

	txn := env.signedTransaction(t)
	sig, err := env.ledger.SubmitAndConfirm(context.Background(), &txn, solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, txn.Signature(), sig)
	assert.Equal(t, 3, env.client.statusCalls)
	require.Len(t, env.client.submitted, 1)
}

func TestRPCLedger_SubmitAndConfirm_Rejected(t *testing.T) {
	env := setupRPCTest(t)

	txErr, err := solana.TransactionErrorFromInstructionError(&solana.InstructionError{
		Index: 1,
		Err:   solana.CustomError(0),
	})
	require.NoError(t, err)

	zero := 0
	env.client.statuses = []*solana.SignatureStatus{
		{Confirmations: &zero, ConfirmationStatus: "confirmed", ErrorResult: txErr},
	}

	txn := env.signedTransaction(t)
	_, err = env.ledger.SubmitAndConfirm(context.Background(), &txn, solana.CommitmentConfirmed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, solana.CustomError(0)))
	assert.False(t, errors.Is(err, ErrConfirmationTimeout))
}

func TestRPCLedger_SubmitAndConfirm_SubmitError(t *testing.T) {
	env := setupRPCTest(t)

	expected := solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
	env.client.submitErr = expected

	txn := env.signedTransaction(t)
	_, err := env.ledger.SubmitAndConfirm(context.Background(), &txn, solana.CommitmentConfirmed)
	assert.Equal(t, expected, err)
	assert.Equal(t, 0, env.client.statusCalls)
}

func TestRPCLedger_SubmitAndConfirm_Timeout(t *testing.T) {
	env := setupRPCTest(t)

	txn := env.signedTransaction(t)
	_, err := env.ledger.SubmitAndConfirm(context.Background(), &txn, solana.CommitmentFinalized)
	assert.True(t, errors.Is(err, ErrConfirmationTimeout))
	assert.True(t, env.client.statusCalls > 1)
}

func TestRPCLedger_SubmitAndConfirm_Cancelled(t *testing.T) {
	env := setupRPCTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	txn := env.signedTransaction(t)
	_, err := env.ledger.SubmitAndConfirm(ctx, &txn, solana.CommitmentConfirmed)
	assert.Equal(t, context.Canceled, err)
}

func TestRPCLedger_Airdrop(t *testing.T) {
	env := setupRPCTest(t)

	zero := 0
	env.client.statuses = []*solana.SignatureStatus{
		{Confirmations: &zero, ConfirmationStatus: "confirmed"},
	}

	account := testutil.GenerateSolanaKeys(t, 1)[0]
	sig, err := env.ledger.RequestAirdrop(context.Background(), account, 1_000_000_000)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_000_000, env.client.airdrops[string(account)])

	require.NoError(t, env.ledger.ConfirmAirdrop(context.Background(), sig, solana.CommitmentConfirmed))
}

func TestRPCLedger_GetAccountData(t *testing.T) {
	env := setupRPCTest(t)

	keys := testutil.GenerateSolanaKeys(t, 2)
	env.client.accounts[string(keys[0])] = solana.AccountInfo{Data: []byte("data")}

	data, err := env.ledger.GetAccountData(context.Background(), keys[0], solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)

	_, err = env.ledger.GetAccountData(context.Background(), keys[1], solana.CommitmentConfirmed)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestRPCLedger_Passthrough(t *testing.T) {
	env := setupRPCTest(t)

	keys := testutil.GenerateSolanaKeys(t, 1)
	env.client.tokenBalances[string(keys[0])] = 9000

	balance, err := env.ledger.GetTokenBalance(context.Background(), keys[0], solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 9000, balance)

	rent, err := env.ledger.GetMinimumBalanceForRentExemption(context.Background(), 32)
	require.NoError(t, err)
	assert.EqualValues(t, 32*100, rent)

	// Repeated lookups for a size are served from the cache.
	rent, err = env.ledger.GetMinimumBalanceForRentExemption(context.Background(), 32)
	require.NoError(t, err)
	assert.EqualValues(t, 32*100, rent)
	_, err = env.ledger.GetMinimumBalanceForRentExemption(context.Background(), 82)
	require.NoError(t, err)
	assert.Equal(t, 2, env.client.rentCalls)

	blockhash, err := env.ledger.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, env.client.blockhash, blockhash)
}

func TestRPCLedger_RentCacheInsertFailure(t *testing.T) {
	env := setupRPCTest(t)

	logger, hook := logtest.NewNullLogger()
	l := env.ledger.(*rpcLedger)
	l.log = logrus.NewEntry(logger)

	// A lost insert race is not worth reporting.
	l.rentCache = &stubCache{insertErr: cache.ErrKeyExists}
	rent, err := l.GetMinimumBalanceForRentExemption(context.Background(), 32)
	require.NoError(t, err)
	assert.EqualValues(t, 32*100, rent)
	assert.Empty(t, hook.AllEntries())

	l.rentCache = &stubCache{insertErr: errors.New("cache unavailable")}
	rent, err = l.GetMinimumBalanceForRentExemption(context.Background(), 32)
	require.NoError(t, err)
	assert.EqualValues(t, 32*100, rent)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.EqualValues(t, 32, hook.LastEntry().Data["size"])
	assert.Equal(t, 2, env.client.rentCalls)
}

type stubCache struct {
	cache.Cache[uint64, uint64]
	insertErr error
}

func (c *stubCache) Insert(uint64, uint64, int) error {
	return c.insertErr
}

func (c *stubCache) Retrieve(uint64) (uint64, bool) {
	return 0, false
}

type rpcTestEnv struct {
	client *fakeClient
	ledger Ledger
}

func setupRPCTest(t *testing.T) *rpcTestEnv {
	client := &fakeClient{
		accounts:      make(map[string]solana.AccountInfo),
		tokenBalances: make(map[string]uint64),
		airdrops:      make(map[string]uint64),
		blockhash:     solana.Blockhash{1, 2, 3},
	}

	return &rpcTestEnv{
		client: client,
		ledger: NewRPCLedger(client, withManualTestOverrides(&testOverrides{
			confirmationTimeout:      50 * time.Millisecond,
			confirmationPollInterval: time.Millisecond,
		})),
	}
}

func (e *rpcTestEnv) signedTransaction(t *testing.T) solana.Transaction {
	payer := testutil.GenerateSolanaKeypair(t)
	keys := testutil.GenerateSolanaKeys(t, 2)

	txn := solana.NewTransaction(
		payer.Public().(ed25519.PublicKey),
		solana.NewInstruction(keys[0], []byte{0}, solana.NewAccountMeta(keys[1], false)),
	)
	txn.SetBlockhash(e.client.blockhash)
	require.NoError(t, txn.Sign(payer))
	return txn
}

// fakeClient serves canned responses. Signature statuses are returned in
// order, repeating the last one.
type fakeClient struct {
	sync.Mutex

	accounts      map[string]solana.AccountInfo
	tokenBalances map[string]uint64
	airdrops      map[string]uint64
	blockhash     solana.Blockhash

	submitErr   error
	submitted   []solana.Transaction
	statuses    []*solana.SignatureStatus
	statusCalls int
	rentCalls   int
}

func (c *fakeClient) GetAccountInfo(account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	c.Lock()
	defer c.Unlock()

	info, ok := c.accounts[string(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func (c *fakeClient) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	c.Lock()
	defer c.Unlock()

	c.rentCalls++
	return size * 100, nil
}

func (c *fakeClient) GetLatestBlockhash() (solana.Blockhash, error) {
	return c.blockhash, nil
}

func (c *fakeClient) GetSignatureStatuses(sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	c.Lock()
	defer c.Unlock()

	c.statusCalls++
	if len(c.statuses) == 0 {
		return []*solana.SignatureStatus{nil}, nil
	}

	index := min(c.statusCalls, len(c.statuses)) - 1
	return []*solana.SignatureStatus{c.statuses[index]}, nil
}

func (c *fakeClient) GetTokenAccountBalance(account ed25519.PublicKey, _ solana.Commitment) (uint64, uint64, error) {
	c.Lock()
	defer c.Unlock()

	balance, ok := c.tokenBalances[string(account)]
	if !ok {
		return 0, 0, solana.ErrNoBalance
	}
	return balance, 1, nil
}

func (c *fakeClient) RequestAirdrop(account ed25519.PublicKey, lamports uint64, _ solana.Commitment) (solana.Signature, error) {
	c.Lock()
	defer c.Unlock()

	c.airdrops[string(account)] += lamports
	return solana.Signature{1}, nil
}

func (c *fakeClient) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	c.Lock()
	defer c.Unlock()

	if c.submitErr != nil {
		return txn.Signature(), c.submitErr
	}

	c.submitted = append(c.submitted, txn)
	return txn.Signature(), nil
}
