package flow

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/echo-client/pkg/common"
	"github.com/code-payments/echo-client/pkg/metrics"
	"github.com/code-payments/echo-client/pkg/solana"
	"github.com/code-payments/echo-client/pkg/solana/echo"
)

type AuthorizedResult struct {
	RunID      string
	Buffer     *common.Account
	Bump       uint8
	BufferSeed uint64
	Message    []byte
	Signature  solana.Signature
}

// RunAuthorized creates payer's authorized buffer for the configured seed and
// writes message into it within a single transaction.
//
// The buffer address depends only on the program, payer and seed, so running
// twice for the same payer and seed fails at submission.
func (o *Orchestrator) RunAuthorized(ctx context.Context, payer *common.Account, message []byte) (result *AuthorizedResult, err error) {
	tracer := metrics.TraceMethodCall(ctx, orchestratorMetricsName, "RunAuthorized")
	defer tracer.End()

	r, err := o.newRun(ctx, FlowTypeAuthorized)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	defer func() {
		if err != nil {
			tracer.OnError(err)
		}
		o.record(ctx, r, err)
	}()

	seed := o.conf.authorizedBufferSeed.Get(ctx)

	address, bump, err := echo.GetAuthorizedBufferAddress(&echo.GetAuthorizedBufferAddressArgs{
		Program:    o.program.PublicKey().ToBytes(),
		Authority:  payer.PublicKey().ToBytes(),
		BufferSeed: seed,
	})
	if err != nil {
		return nil, r.fail("derive", KindDerivation, err)
	}

	buffer, err := common.NewAccountFromPublicKeyBytes(address)
	if err != nil {
		return nil, r.fail("derive", KindDerivation, err)
	}

	r.log = r.log.WithFields(logrus.Fields{
		"buffer":      buffer.String(),
		"bump":        bump,
		"buffer_seed": seed,
	})

	if err := o.checkMessage(ctx, r, message, echo.MaxPrefixedMessageSize(r.bufferSize)); err != nil {
		return nil, err
	}

	initialize, err := echo.NewInitializeAuthorizedEchoInstruction(
		o.program.PublicKey().ToBytes(),
		&echo.InitializeAuthorizedEchoInstructionAccounts{
			AuthorizedBuffer: address,
			Authority:        payer.PublicKey().ToBytes(),
		},
		&echo.InitializeAuthorizedEchoInstructionArgs{
			BufferSeed: seed,
			BufferSize: r.bufferSize,
		},
	)
	if err != nil {
		return nil, r.fail("encode", KindEncoding, err)
	}

	write, err := echo.NewAuthorizedEchoInstruction(
		o.program.PublicKey().ToBytes(),
		&echo.AuthorizedEchoInstructionAccounts{
			AuthorizedBuffer: address,
			Authority:        payer.PublicKey().ToBytes(),
		},
		&echo.AuthorizedEchoInstructionArgs{
			Data: message,
		},
	)
	if err != nil {
		return nil, r.fail("encode", KindEncoding, err)
	}

	plan, err := Compose(payer, nil, initialize, write)
	if err != nil {
		return nil, r.fail("compose", KindEncoding, err)
	}

	sig, err := o.submit(ctx, r, plan)
	if err != nil {
		return nil, err
	}

	data, err := o.readAccount(ctx, r, buffer)
	if err != nil {
		return nil, err
	}

	var state echo.AuthorizedBuffer
	if err := state.Unmarshal(data); err != nil {
		return nil, r.fail("read_back", KindVerification, errors.Wrap(ErrVerificationFailed, err.Error()))
	}

	expected := echo.ExpectedPrefixedMessage(message, uint64(len(data)))
	switch {
	case state.Bump != bump:
		err = errors.Wrapf(ErrVerificationFailed, "buffer bump %d, expected %d", state.Bump, bump)
	case state.BufferSeed != seed:
		err = errors.Wrapf(ErrVerificationFailed, "buffer seed %d, expected %d", state.BufferSeed, seed)
	case !bytes.Equal(expected, state.Message):
		err = errors.Wrapf(ErrVerificationFailed, "buffer holds %q, expected %q", state.Message, expected)
	}
	if err != nil {
		return nil, r.fail("verify", KindVerification, err)
	}

	return &AuthorizedResult{
		RunID:      r.id,
		Buffer:     buffer,
		Bump:       bump,
		BufferSeed: seed,
		Message:    state.Message,
		Signature:  sig,
	}, nil
}
