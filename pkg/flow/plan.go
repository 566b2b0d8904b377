package flow

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/echo-client/pkg/common"
	"github.com/code-payments/echo-client/pkg/ledger"
	"github.com/code-payments/echo-client/pkg/metrics"
	"github.com/code-payments/echo-client/pkg/solana"
)

const composerMetricsName = "flow.composer"

// Plan is an ordered set of instructions submitted as a single transaction,
// along with every identity that must sign it. Plans are immutable once
// composed.
type Plan struct {
	feePayer     *common.Account
	instructions []solana.Instruction
	signers      []*common.Account
}

// Compose builds a plan paid for by feePayer. Instruction order is preserved.
//
// The signer set is the fee payer plus every account an instruction flags as
// a signer. Each must be found among feePayer and signers with a private key.
// Supplied accounts that no instruction requires are dropped.
func Compose(feePayer *common.Account, signers []*common.Account, instructions ...solana.Instruction) (*Plan, error) {
	if len(instructions) == 0 {
		return nil, ErrEmptyPlan
	}
	if feePayer == nil || !feePayer.CanSign() {
		return nil, errors.Wrap(ErrMissingSigner, "fee payer")
	}

	available := append([]*common.Account{feePayer}, signers...)
	required := []*common.Account{feePayer}

	for _, instruction := range instructions {
		for _, meta := range instruction.Accounts {
			if !meta.IsSigner || containsKey(required, meta.PublicKey) {
				continue
			}

			signer := findSigner(available, meta.PublicKey)
			if signer != nil {
				required = append(required, signer)
				continue
			}

			if !common.IsOnCurve(meta.PublicKey) {
				return nil, errors.Wrapf(ErrDerivedAddressSigner, "account %s", base58.Encode(meta.PublicKey))
			}
			return nil, errors.Wrapf(ErrMissingSigner, "account %s", base58.Encode(meta.PublicKey))
		}
	}

	return &Plan{
		feePayer:     feePayer,
		instructions: append([]solana.Instruction(nil), instructions...),
		signers:      required,
	}, nil
}

func (p *Plan) FeePayer() *common.Account {
	return p.feePayer
}

func (p *Plan) Instructions() []solana.Instruction {
	return append([]solana.Instruction(nil), p.instructions...)
}

// Signers returns the signing identities, fee payer first.
func (p *Plan) Signers() []*common.Account {
	return append([]*common.Account(nil), p.signers...)
}

// Transaction compiles and signs the plan against blockhash.
func (p *Plan) Transaction(blockhash solana.Blockhash) (*solana.Transaction, error) {
	txn := solana.NewTransaction(p.feePayer.PublicKey().ToBytes(), p.instructions...)
	txn.SetBlockhash(blockhash)

	keys := make([]ed25519.PrivateKey, 0, len(p.signers))
	for _, signer := range p.signers {
		key, err := signer.ToSigner()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	if err := txn.Sign(keys...); err != nil {
		return nil, errors.Wrap(err, "error signing transaction")
	}
	return &txn, nil
}

// Composer submits plans to a ledger.
type Composer struct {
	log    *logrus.Entry
	ledger ledger.Ledger
}

func NewComposer(l ledger.Ledger) *Composer {
	return &Composer{
		log:    logrus.StandardLogger().WithField("type", "flow/composer"),
		ledger: l,
	}
}

// Submit signs the plan against the latest blockhash and waits for it to
// reach commitment. Failures are returned unmodified and never retried.
func (c *Composer) Submit(ctx context.Context, plan *Plan, commitment solana.Commitment) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, composerMetricsName, "Submit")
	defer tracer.End()

	log := c.log.WithFields(logrus.Fields{
		"method":       "Submit",
		"fee_payer":    plan.feePayer.String(),
		"instructions": len(plan.instructions),
	})

	blockhash, err := c.ledger.GetLatestBlockhash(ctx)
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, err
	}

	txn, err := plan.Transaction(blockhash)
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, err
	}

	log = log.WithField("signature", txn.Signature().String())
	log.Debug("submitting transaction")

	sig, err := c.ledger.SubmitAndConfirm(ctx, txn, commitment)
	if err != nil {
		log.WithError(err).Info("transaction failed")
		tracer.OnError(err)
		return sig, err
	}

	log.Debug("transaction confirmed")
	return sig, nil
}

func findSigner(accounts []*common.Account, key ed25519.PublicKey) *common.Account {
	for _, account := range accounts {
		if account != nil && account.CanSign() && bytes.Equal(account.PublicKey().ToBytes(), key) {
			return account
		}
	}
	return nil
}

func containsKey(accounts []*common.Account, key ed25519.PublicKey) bool {
	for _, account := range accounts {
		if bytes.Equal(account.PublicKey().ToBytes(), key) {
			return true
		}
	}
	return false
}
