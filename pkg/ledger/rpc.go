package ledger

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/echo-client/pkg/cache"
	"github.com/code-payments/echo-client/pkg/metrics"
	"github.com/code-payments/echo-client/pkg/rate"
	"github.com/code-payments/echo-client/pkg/retry"
	"github.com/code-payments/echo-client/pkg/retry/backoff"
	"github.com/code-payments/echo-client/pkg/solana"
)

const (
	rpcLedgerMetricsName = "ledger.rpc_ledger"

	rpcRateLimitKey = "rpc"

	rentCacheBudget = 64
)

var (
	errNotConfirmed = errors.New("transaction not confirmed")
)

type rpcLedger struct {
	log     *logrus.Entry
	conf    *conf
	sc      solana.Client
	limiter rate.Limiter

	// Rent exemption only depends on the account size for the lifetime of a
	// process.
	rentCache cache.Cache[uint64, uint64]
}

// NewRPCLedger returns a Ledger backed by a Solana JSON-RPC client.
func NewRPCLedger(sc solana.Client, configProvider ConfigProvider) Ledger {
	conf := configProvider()

	var limiter rate.Limiter = rate.NoLimiter{}
	if limit := conf.rpcRateLimit.Get(context.Background()); limit > 0 {
		limiter = rate.NewLocalRateLimiter(xrate.Limit(limit))
	}

	return &rpcLedger{
		log:       logrus.StandardLogger().WithField("type", "ledger/rpc"),
		conf:      conf,
		sc:        sc,
		limiter:   limiter,
		rentCache: cache.NewCache[uint64, uint64]("rent_exemption", rentCacheBudget),
	}
}

func (l *rpcLedger) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, rpcLedgerMetricsName, "GetMinimumBalanceForRentExemption")
	defer tracer.End()

	if cached, ok := l.rentCache.Retrieve(size); ok {
		return cached, nil
	}

	if err := l.limiter.Wait(ctx, rpcRateLimitKey); err != nil {
		return 0, err
	}

	res, err := l.sc.GetMinimumBalanceForRentExemption(size)
	if err != nil {
		tracer.OnError(err)
		return 0, err
	}

	if err := l.rentCache.Insert(size, res, 1); err != nil && err != cache.ErrKeyExists {
		l.log.WithError(err).WithField("size", size).Warn("failure caching rent exemption minimum")
	}
	return res, nil
}

func (l *rpcLedger) GetLatestBlockhash(ctx context.Context) (solana.Blockhash, error) {
	tracer := metrics.TraceMethodCall(ctx, rpcLedgerMetricsName, "GetLatestBlockhash")
	defer tracer.End()

	if err := l.limiter.Wait(ctx, rpcRateLimitKey); err != nil {
		return solana.Blockhash{}, err
	}

	res, err := l.sc.GetLatestBlockhash()
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

func (l *rpcLedger) SubmitAndConfirm(ctx context.Context, txn *solana.Transaction, commitment solana.Commitment) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, rpcLedgerMetricsName, "SubmitAndConfirm")
	defer tracer.End()

	if err := l.limiter.Wait(ctx, rpcRateLimitKey); err != nil {
		return solana.Signature{}, err
	}

	sig, err := l.sc.SubmitTransaction(*txn, commitment)
	if err != nil {
		tracer.OnError(err)
		return sig, err
	}

	tracer.AddAttribute("signature", sig.String())

	if err := l.waitForConfirmation(ctx, sig, commitment); err != nil {
		tracer.OnError(err)
		return sig, err
	}
	return sig, nil
}

func (l *rpcLedger) GetAccountData(ctx context.Context, account ed25519.PublicKey, commitment solana.Commitment) ([]byte, error) {
	tracer := metrics.TraceMethodCall(ctx, rpcLedgerMetricsName, "GetAccountData")
	defer tracer.End()

	if err := l.limiter.Wait(ctx, rpcRateLimitKey); err != nil {
		return nil, err
	}

	info, err := l.sc.GetAccountInfo(account, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return info.Data, nil
}

func (l *rpcLedger) GetTokenBalance(ctx context.Context, account ed25519.PublicKey, commitment solana.Commitment) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, rpcLedgerMetricsName, "GetTokenBalance")
	defer tracer.End()

	if err := l.limiter.Wait(ctx, rpcRateLimitKey); err != nil {
		return 0, err
	}

	balance, _, err := l.sc.GetTokenAccountBalance(account, commitment)
	if err != nil {
		tracer.OnError(err)
	}
	return balance, err
}

func (l *rpcLedger) RequestAirdrop(ctx context.Context, account ed25519.PublicKey, lamports uint64) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, rpcLedgerMetricsName, "RequestAirdrop")
	defer tracer.End()

	if err := l.limiter.Wait(ctx, rpcRateLimitKey); err != nil {
		return solana.Signature{}, err
	}

	sig, err := l.sc.RequestAirdrop(account, lamports, solana.CommitmentConfirmed)
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

func (l *rpcLedger) ConfirmAirdrop(ctx context.Context, sig solana.Signature, commitment solana.Commitment) error {
	tracer := metrics.TraceMethodCall(ctx, rpcLedgerMetricsName, "ConfirmAirdrop")
	defer tracer.End()

	err := l.waitForConfirmation(ctx, sig, commitment)
	if err != nil {
		tracer.OnError(err)
	}
	return err
}

// waitForConfirmation polls the signature status until it satisfies the
// commitment, fails, or the confirmation timeout elapses.
func (l *rpcLedger) waitForConfirmation(ctx context.Context, sig solana.Signature, commitment solana.Commitment) error {
	log := l.log.WithFields(logrus.Fields{
		"method":     "waitForConfirmation",
		"signature":  sig.String(),
		"commitment": commitment.Commitment,
	})

	pollInterval := l.conf.confirmationPollInterval.Get(ctx)

	timeoutCtx, cancel := context.WithTimeout(ctx, l.conf.confirmationTimeout.Get(ctx))
	defer cancel()

	attempts, err := retry.Retry(
		func() error {
			if err := l.limiter.Wait(timeoutCtx, rpcRateLimitKey); err != nil {
				return errNotConfirmed
			}

			statuses, err := l.sc.GetSignatureStatuses([]solana.Signature{sig})
			if err != nil {
				log.WithError(err).Debug("failure getting signature status")
				return errNotConfirmed
			}

			if len(statuses) == 0 || statuses[0] == nil {
				return errNotConfirmed
			}

			status := statuses[0]
			if status.ErrorResult != nil {
				return status.ErrorResult
			}
			if !status.Satisfies(commitment) {
				return errNotConfirmed
			}
			return nil
		},
		retry.Context(timeoutCtx),
		retry.RetriableErrors(errNotConfirmed),
		retry.Backoff(backoff.Constant(pollInterval), pollInterval),
	)

	switch {
	case err == nil:
		log.WithField("attempts", attempts).Debug("transaction confirmed")
		return nil
	case errors.Is(err, errNotConfirmed):
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithField("attempts", attempts).Warn("transaction not confirmed in time")
		return errors.Wrapf(ErrConfirmationTimeout, "signature %s", sig.String())
	default:
		return err
	}
}
