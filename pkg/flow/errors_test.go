package flow

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/code-payments/echo-client/pkg/ledger"
	"github.com/code-payments/echo-client/pkg/solana"
	"github.com/code-payments/echo-client/pkg/solana/echo"
)

func TestKindOf(t *testing.T) {
	txErr, err := solana.TransactionErrorFromInstructionError(&solana.InstructionError{
		Index: 1,
		Err:   echo.ErrorBufferNonZero,
	})
	assert.NoError(t, err)

	for _, tc := range []struct {
		err      error
		expected Kind
	}{
		{nil, KindUnknown},
		{errors.New("unexpected"), KindUnknown},
		{errors.Wrap(ledger.ErrConfirmationTimeout, "signature"), KindConfirmationTimeout},
		{context.DeadlineExceeded, KindConfirmationTimeout},
		{solana.ErrAddressDerivationExhausted, KindDerivation},
		{errors.Wrap(echo.ErrMessageTooLong, "encode"), KindEncoding},
		{ErrEmptyPlan, KindEncoding},
		{txErr, KindSubmission},
		{solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound), KindSubmission},
		{ErrVerificationFailed, KindVerification},
	} {
		assert.Equal(t, tc.expected, KindOf(tc.err), "%v", tc.err)
	}
}

func TestNewError(t *testing.T) {
	cause := errors.New("rpc unavailable")

	err := newError("vending", "mint_supply", KindCollaborator, cause)
	assert.Equal(t, KindCollaborator, KindOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, errors.Cause(err))
	assert.Equal(t, "vending flow failed at mint_supply (collaborator): rpc unavailable", err.Error())

	// Classification wins over the fallback.
	err = newError("vending", "submit", KindCollaborator, errors.Wrap(ledger.ErrConfirmationTimeout, "sig"))
	assert.Equal(t, KindConfirmationTimeout, KindOf(err))

	// Errors that already carry a stage are kept.
	rewrapped := newError("funding", "request_airdrop", KindUnknown, err)
	assert.Equal(t, err, rewrapped)
}

func TestNewCollaboratorError(t *testing.T) {
	rejected := solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)

	err := newCollaboratorError("vending", "create_mint", rejected)
	assert.Equal(t, KindCollaborator, KindOf(err))
	assert.True(t, errors.Is(err, rejected))

	err = newCollaboratorError("vending", "mint_supply", errors.New("rent lookup failed"))
	assert.Equal(t, KindCollaborator, KindOf(err))

	err = newCollaboratorError("vending", "create_holding_account", errors.Wrap(context.DeadlineExceeded, "confirm"))
	assert.Equal(t, KindConfirmationTimeout, KindOf(err))

	rewrapped := newCollaboratorError("vending", "create_mint", err)
	assert.Equal(t, err, rewrapped)
}
