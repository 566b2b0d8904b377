package flow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/echo-client/pkg/common"
	"github.com/code-payments/echo-client/pkg/ledger"
	"github.com/code-payments/echo-client/pkg/metrics"
	"github.com/code-payments/echo-client/pkg/solana"
)

const (
	orchestratorMetricsName = "flow.orchestrator"

	flowCompletedEventName = "EchoFlowCompleted"
	flowFailedEventName    = "EchoFlowFailed"
)

// FlowType selects an end-to-end echo flow. Values match the command line
// selector.
type FlowType uint8

const (
	FlowTypeBasic      FlowType = 0
	FlowTypeAuthorized FlowType = 1
	FlowTypeVending    FlowType = 3
)

func ParseFlowType(value string) (FlowType, error) {
	switch strings.TrimSpace(value) {
	case "0":
		return FlowTypeBasic, nil
	case "1":
		return FlowTypeAuthorized, nil
	case "3":
		return FlowTypeVending, nil
	}
	return 0, errors.Wrapf(ErrInvalidFlowType, "%q", value)
}

func (t FlowType) String() string {
	switch t {
	case FlowTypeBasic:
		return "basic"
	case FlowTypeAuthorized:
		return "authorized"
	case FlowTypeVending:
		return "vending"
	}
	return "unknown"
}

// Orchestrator runs the echo flows against a deployed echo program.
type Orchestrator struct {
	log  *logrus.Entry
	conf *conf

	environment solana.Environment
	program     *common.Account

	ledger   ledger.Ledger
	composer *Composer
	assets   AssetProgram
	identity IdentityProvider
}

func NewOrchestrator(
	environment solana.Environment,
	program *common.Account,
	l ledger.Ledger,
	assets AssetProgram,
	identity IdentityProvider,
	configProvider ConfigProvider,
) *Orchestrator {
	return &Orchestrator{
		log:         logrus.StandardLogger().WithField("type", "flow/orchestrator"),
		conf:        configProvider(),
		environment: environment,
		program:     program,
		ledger:      l,
		composer:    NewComposer(l),
		assets:      assets,
		identity:    identity,
	}
}

// run carries the per-invocation state shared by every stage of a flow.
type run struct {
	flow       FlowType
	id         string
	log        *logrus.Entry
	start      time.Time
	commitment solana.Commitment
	bufferSize uint64
}

func (o *Orchestrator) newRun(ctx context.Context, flow FlowType) (*run, error) {
	r := &run{
		flow:       flow,
		id:         uuid.New().String(),
		start:      time.Now(),
		bufferSize: o.conf.bufferSize.Get(ctx),
	}
	r.log = o.log.WithFields(logrus.Fields{
		"flow":    flow.String(),
		"run_id":  r.id,
		"program": o.program.String(),
	})

	commitment, err := o.conf.getCommitment(ctx)
	if err != nil {
		return nil, r.fail("configure", KindEncoding, err)
	}
	r.commitment = commitment

	r.log.Debug("starting flow")
	return r, nil
}

func (r *run) stage(stage string) *logrus.Entry {
	return r.log.WithField("stage", stage)
}

func (r *run) fail(stage string, fallback Kind, err error) error {
	err = newError(r.flow.String(), stage, fallback, err)
	r.stage(stage).WithError(err).Warn("flow failed")
	return err
}

func (r *run) failCollaborator(stage string, err error) error {
	err = newCollaboratorError(r.flow.String(), stage, err)
	r.stage(stage).WithError(err).Warn("flow failed")
	return err
}

// checkMessage applies the oversized message policy. The program silently
// truncates messages that don't fit, so by default this only warns.
func (o *Orchestrator) checkMessage(ctx context.Context, r *run, message []byte, capacity int) error {
	if len(message) <= capacity {
		return nil
	}

	if o.conf.rejectOversizedMessages.Get(ctx) {
		return r.fail("validate_message", KindEncoding, errors.Wrapf(ErrMessageTooLarge, "%d bytes, capacity %d", len(message), capacity))
	}

	r.stage("validate_message").WithFields(logrus.Fields{
		"message_size": len(message),
		"capacity":     capacity,
	}).Warn("message will be truncated by the program")
	return nil
}

func (o *Orchestrator) submit(ctx context.Context, r *run, plan *Plan) (solana.Signature, error) {
	sig, err := o.composer.Submit(ctx, plan, r.commitment)
	if err != nil {
		return sig, r.fail("submit", KindSubmission, err)
	}

	r.stage("submit").WithFields(logrus.Fields{
		"signature":    sig.String(),
		"explorer_url": o.environment.ExplorerTransactionURL(sig),
	}).Info("transaction confirmed")
	return sig, nil
}

func (o *Orchestrator) readAccount(ctx context.Context, r *run, account *common.Account) ([]byte, error) {
	data, err := o.ledger.GetAccountData(ctx, account.PublicKey().ToBytes(), r.commitment)
	if err != nil {
		return nil, r.fail("read_back", KindCollaborator, err)
	}
	return data, nil
}

func (o *Orchestrator) record(ctx context.Context, r *run, err error) {
	event := map[string]interface{}{
		"flow":   r.flow.String(),
		"run_id": r.id,
	}

	if err != nil {
		kind := KindOf(err)
		event["kind"] = kind.String()
		metrics.RecordEvent(ctx, flowFailedEventName, event)
		metrics.RecordCount(ctx, "EchoFlow/"+r.flow.String()+"/failed/"+kind.String(), 1)
		return
	}

	metrics.RecordEvent(ctx, flowCompletedEventName, event)
	metrics.RecordDuration(ctx, "EchoFlow/"+r.flow.String(), time.Since(r.start))
	r.log.WithField("duration", time.Since(r.start)).Info("flow completed")
}
