package flow

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/echo-client/pkg/ledger"
	"github.com/code-payments/echo-client/pkg/solana"
	"github.com/code-payments/echo-client/pkg/solana/echo"
)

var (
	ErrMissingSigner        = errors.New("required signer has no private key")
	ErrDerivedAddressSigner = errors.New("derived address cannot sign")
	ErrEmptyPlan            = errors.New("plan has no instructions")
	ErrVerificationFailed   = errors.New("on-chain state verification failed")
	ErrMessageTooLarge      = errors.New("message exceeds buffer capacity")
	ErrInvalidFlowType      = errors.New("invalid flow type")
)

// Kind classifies a flow failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindEncoding
	KindDerivation
	KindSubmission
	KindConfirmationTimeout
	KindCollaborator
	KindVerification
)

func (k Kind) String() string {
	switch k {
	case KindEncoding:
		return "encoding"
	case KindDerivation:
		return "derivation"
	case KindSubmission:
		return "submission"
	case KindConfirmationTimeout:
		return "confirmation_timeout"
	case KindCollaborator:
		return "collaborator"
	case KindVerification:
		return "verification"
	}
	return "unknown"
}

// Error is returned by every flow. It records where the flow stopped and
// wraps the underlying failure unmodified.
//
// A KindConfirmationTimeout error means the transaction may or may not have
// landed.
type Error struct {
	Flow  string
	Stage string
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s flow failed at %s (%s): %v", e.Flow, e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Cause() error {
	return e.Err
}

// KindOf returns the kind of a flow error, classifying unwrapped errors on a
// best effort basis.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var flowErr *Error
	if errors.As(err, &flowErr) {
		return flowErr.Kind
	}
	return classify(err)
}

func newError(flow, stage string, fallback Kind, err error) error {
	var flowErr *Error
	if errors.As(err, &flowErr) {
		return err
	}

	kind := classify(err)
	if kind == KindUnknown {
		kind = fallback
	}

	return &Error{
		Flow:  flow,
		Stage: stage,
		Kind:  kind,
		Err:   err,
	}
}

// newCollaboratorError attributes err to an external collaborator regardless
// of its shape. Timeouts keep their kind, since the outcome is still unknown.
func newCollaboratorError(flow, stage string, err error) error {
	var flowErr *Error
	if errors.As(err, &flowErr) {
		return err
	}

	kind := KindCollaborator
	if classify(err) == KindConfirmationTimeout {
		kind = KindConfirmationTimeout
	}

	return &Error{
		Flow:  flow,
		Stage: stage,
		Kind:  kind,
		Err:   err,
	}
}

func classify(err error) Kind {
	var txErr *solana.TransactionError

	switch {
	case errors.Is(err, ledger.ErrConfirmationTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindConfirmationTimeout
	case errors.Is(err, solana.ErrAddressDerivationExhausted),
		errors.Is(err, solana.ErrTooManySeeds),
		errors.Is(err, solana.ErrMaxSeedLengthExceeded):
		return KindDerivation
	case errors.Is(err, echo.ErrMessageTooLong),
		errors.Is(err, echo.ErrInvalidInstructionData),
		errors.Is(err, echo.ErrUnknownOpcode),
		errors.Is(err, echo.ErrMissingAccount),
		errors.Is(err, echo.ErrInvalidProgram),
		errors.Is(err, ErrMissingSigner),
		errors.Is(err, ErrDerivedAddressSigner),
		errors.Is(err, ErrEmptyPlan),
		errors.Is(err, ErrMessageTooLarge):
		return KindEncoding
	case errors.As(err, &txErr):
		return KindSubmission
	case errors.Is(err, ErrVerificationFailed):
		return KindVerification
	}
	return KindUnknown
}
