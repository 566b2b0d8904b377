package main

import (
	"context"
	"fmt"
	"os"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/echo-client/pkg/app"
	"github.com/code-payments/echo-client/pkg/common"
	"github.com/code-payments/echo-client/pkg/flow"
	"github.com/code-payments/echo-client/pkg/ledger"
	"github.com/code-payments/echo-client/pkg/solana"
)

const usage = "usage: echo-client [flags] <0|1|3> <message> [target]"

type echoClient struct {
	log *logrus.Entry

	metricsProvider *newrelic.Application

	payerKeypair string
	orchestrator *flow.Orchestrator
	identity     flow.IdentityProvider
}

func main() {
	if err := app.Run(&echoClient{}); err != nil {
		logrus.StandardLogger().WithError(err).Error("echo client failed")
		os.Exit(1)
	}
}

// Init implements app.App.Init
func (c *echoClient) Init(_ app.Config, metricsProvider *newrelic.Application) error {
	c.log = logrus.StandardLogger().WithField("type", "echo-client")
	c.metricsProvider = metricsProvider

	conf, err := loadConfig()
	if err != nil {
		return err
	}

	program, err := common.NewAccountFromPublicKeyString(conf.ProgramID)
	if err != nil {
		return errors.Wrap(err, "invalid program id")
	}

	environment := solana.Environment(conf.SolanaProviderURL)
	l := ledger.NewRPCLedger(solana.New(conf.SolanaProviderURL), ledger.WithEnvConfigs())

	c.payerKeypair = conf.PayerKeypair
	c.identity = flow.NewRandomIdentityProvider()
	c.orchestrator = flow.NewOrchestrator(
		environment,
		program,
		l,
		flow.NewTokenAssetProgram(l, c.identity, flow.WithEnvConfigs()),
		c.identity,
		flow.WithEnvConfigs(),
	)

	c.log.WithFields(logrus.Fields{
		"cluster": environment.Cluster(),
		"program": program.String(),
	}).Debug("initialized")

	return nil
}

// Run implements app.App.Run
func (c *echoClient) Run(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New(usage)
	}

	flowType, err := flow.ParseFlowType(args[0])
	if err != nil {
		return errors.Wrap(err, usage)
	}
	message := []byte(args[1])

	var target *common.Account
	if len(args) == 3 {
		if flowType != flow.FlowTypeBasic {
			return errors.Errorf("a target is only supported by the basic flow\n%s", usage)
		}

		target, err = common.NewAccountFromPublicKeyString(args[2])
		if err != nil {
			return errors.Wrap(err, "invalid target address")
		}
	}

	if c.metricsProvider != nil {
		txn := c.metricsProvider.StartTransaction("echo-client " + flowType.String())
		defer txn.End()
		ctx = newrelic.NewContext(ctx, txn)
	}

	payer, err := c.getPayer(ctx)
	if err != nil {
		return err
	}

	switch flowType {
	case flow.FlowTypeBasic:
		result, err := c.orchestrator.RunBasic(ctx, payer, message, target)
		if err != nil {
			return err
		}
		fmt.Printf("Echo Key: %s\n", result.Buffer.String())
		fmt.Printf("Msg: %s\n", result.Message)
	case flow.FlowTypeAuthorized:
		result, err := c.orchestrator.RunAuthorized(ctx, payer, message)
		if err != nil {
			return err
		}
		fmt.Printf("Echo Key: %s\n", result.Buffer.String())
		fmt.Printf("Msg: %s\n", result.Message)
	case flow.FlowTypeVending:
		result, err := c.orchestrator.RunVending(ctx, payer, message)
		if err != nil {
			return err
		}
		fmt.Printf("Echo Key: %s\n", result.VendingMachine.String())
		fmt.Printf("Msg: %s\n", result.Message)
		fmt.Printf("Balance: %d\n", result.BalanceAfter)
	}

	return nil
}

// Stop implements app.App.Stop
func (c *echoClient) Stop() {
}

func (c *echoClient) getPayer(ctx context.Context) (*common.Account, error) {
	if len(c.payerKeypair) > 0 {
		payer, err := loadKeypair(c.payerKeypair)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load payer keypair")
		}
		return payer, nil
	}

	payer, err := c.identity.GenerateKeypair()
	if err != nil {
		return nil, err
	}

	if err := c.orchestrator.Fund(ctx, payer); err != nil {
		return nil, err
	}
	return payer, nil
}
