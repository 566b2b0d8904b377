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
	"github.com/code-payments/echo-client/pkg/solana/system"
)

type BasicResult struct {
	RunID     string
	Buffer    *common.Account
	Created   bool
	Message   []byte
	Signature solana.Signature
}

// RunBasic writes message into a plain echo buffer and reads it back.
//
// When target is nil, a fresh buffer owned by the program is created in the
// same transaction as the write. Otherwise target must already be a zeroed
// buffer owned by the program.
func (o *Orchestrator) RunBasic(ctx context.Context, payer *common.Account, message []byte, target *common.Account) (result *BasicResult, err error) {
	tracer := metrics.TraceMethodCall(ctx, orchestratorMetricsName, "RunBasic")
	defer tracer.End()

	r, err := o.newRun(ctx, FlowTypeBasic)
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

	var instructions []solana.Instruction
	var signers []*common.Account

	buffer := target
	bufferSize := r.bufferSize
	if buffer == nil {
		buffer, err = o.identity.GenerateKeypair()
		if err != nil {
			return nil, r.fail("generate_buffer", KindCollaborator, err)
		}

		rent, err := o.ledger.GetMinimumBalanceForRentExemption(ctx, bufferSize)
		if err != nil {
			return nil, r.fail("rent_exemption", KindCollaborator, err)
		}

		instructions = append(instructions, system.CreateAccount(
			payer.PublicKey().ToBytes(),
			buffer.PublicKey().ToBytes(),
			o.program.PublicKey().ToBytes(),
			rent,
			bufferSize,
		))
		signers = append(signers, buffer)
	} else {
		existing, err := o.readAccount(ctx, r, buffer)
		if err != nil {
			return nil, err
		}
		bufferSize = uint64(len(existing))
	}

	r.log = r.log.WithFields(logrus.Fields{
		"buffer":      buffer.String(),
		"buffer_size": bufferSize,
		"created":     target == nil,
	})

	if err := o.checkMessage(ctx, r, message, echo.MaxEchoMessageSize(bufferSize)); err != nil {
		return nil, err
	}

	instruction, err := echo.NewEchoInstruction(
		o.program.PublicKey().ToBytes(),
		&echo.EchoInstructionAccounts{
			Buffer: buffer.PublicKey().ToBytes(),
		},
		&echo.EchoInstructionArgs{
			Data: message,
		},
	)
	if err != nil {
		return nil, r.fail("encode", KindEncoding, err)
	}
	instructions = append(instructions, instruction)

	plan, err := Compose(payer, signers, instructions...)
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

	var state echo.EchoBuffer
	if err := state.Unmarshal(data); err != nil {
		return nil, r.fail("read_back", KindVerification, errors.Wrap(ErrVerificationFailed, err.Error()))
	}

	expected := echo.ExpectedEchoMessage(message, uint64(len(data)))
	if !bytes.Equal(expected, state.Message) {
		return nil, r.fail("verify", KindVerification, errors.Wrapf(ErrVerificationFailed, "buffer holds %q, expected %q", state.Message, expected))
	}

	return &BasicResult{
		RunID:     r.id,
		Buffer:    buffer,
		Created:   target == nil,
		Message:   state.Message,
		Signature: sig,
	}, nil
}
