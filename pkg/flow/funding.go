package flow

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/echo-client/pkg/common"
	"github.com/code-payments/echo-client/pkg/metrics"
)

const fundingFlowName = "funding"

// Fund airdrops the configured number of lamports to account and waits for
// the airdrop to reach the configured commitment. It's only useful against
// networks with a faucet.
func (o *Orchestrator) Fund(ctx context.Context, account *common.Account) error {
	tracer := metrics.TraceMethodCall(ctx, orchestratorMetricsName, "Fund")
	defer tracer.End()

	lamports := o.conf.airdropLamports.Get(ctx)

	log := o.log.WithFields(logrus.Fields{
		"method":   "Fund",
		"account":  account.String(),
		"lamports": lamports,
	})

	commitment, err := o.conf.getCommitment(ctx)
	if err != nil {
		err = newError(fundingFlowName, "configure", KindEncoding, err)
		tracer.OnError(err)
		return err
	}

	sig, err := o.ledger.RequestAirdrop(ctx, account.PublicKey().ToBytes(), lamports)
	if err != nil {
		err = newError(fundingFlowName, "request_airdrop", KindCollaborator, err)
		log.WithError(err).Warn("failure requesting airdrop")
		tracer.OnError(err)
		return err
	}

	log = log.WithField("signature", sig.String())

	if err := o.ledger.ConfirmAirdrop(ctx, sig, commitment); err != nil {
		err = newError(fundingFlowName, "confirm_airdrop", KindCollaborator, err)
		log.WithError(err).Warn("failure confirming airdrop")
		tracer.OnError(err)
		return err
	}

	log.Debug("account funded")
	return nil
}
