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

type VendingResult struct {
	RunID          string
	VendingMachine *common.Account
	Bump           uint8
	Price          uint64
	Mint           *common.Account
	HoldingAccount *common.Account
	Message        []byte
	Signature      solana.Signature
	BalanceBefore  uint64
	BalanceAfter   uint64
}

// RunVending pays for an echo with tokens.
//
// A new asset is created with payer as its authority and the configured
// supply is minted into payer's holding account. The vending machine for the
// asset and price is then created and written within a single transaction,
// which burns exactly price tokens from the holding account.
func (o *Orchestrator) RunVending(ctx context.Context, payer *common.Account, message []byte) (result *VendingResult, err error) {
	tracer := metrics.TraceMethodCall(ctx, orchestratorMetricsName, "RunVending")
	defer tracer.End()

	r, err := o.newRun(ctx, FlowTypeVending)
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

	price := o.conf.vendingPrice.Get(ctx)
	supply := o.conf.vendingMintSupply.Get(ctx)

	decimals, err := o.conf.getDecimals(ctx)
	if err != nil {
		return nil, r.fail("configure", KindEncoding, err)
	}

	r.log = r.log.WithFields(logrus.Fields{
		"price":  price,
		"supply": supply,
	})

	if err := o.checkMessage(ctx, r, message, echo.MaxPrefixedMessageSize(r.bufferSize)); err != nil {
		return nil, err
	}

	mint, err := o.assets.CreateAsset(ctx, payer, payer, decimals)
	if err != nil {
		return nil, r.failCollaborator("create_mint", err)
	}

	holding, err := o.assets.CreateHoldingAccount(ctx, payer, mint, payer)
	if err != nil {
		return nil, r.failCollaborator("create_holding_account", err)
	}

	if err := o.assets.MintInto(ctx, payer, mint, holding, payer, supply); err != nil {
		return nil, r.failCollaborator("mint_supply", err)
	}

	r.log = r.log.WithFields(logrus.Fields{
		"mint":    mint.String(),
		"holding": holding.String(),
	})

	balanceBefore, err := o.assets.GetHoldingBalance(ctx, holding)
	if err != nil {
		return nil, r.fail("balance_before", KindCollaborator, err)
	}

	address, bump, err := echo.GetVendingMachineAddress(&echo.GetVendingMachineAddressArgs{
		Program: o.program.PublicKey().ToBytes(),
		Mint:    mint.PublicKey().ToBytes(),
		Price:   price,
	})
	if err != nil {
		return nil, r.fail("derive", KindDerivation, err)
	}

	machine, err := common.NewAccountFromPublicKeyBytes(address)
	if err != nil {
		return nil, r.fail("derive", KindDerivation, err)
	}

	r.log = r.log.WithFields(logrus.Fields{
		"vending_machine": machine.String(),
		"bump":            bump,
	})

	initialize, err := echo.NewInitializeVendingEchoInstruction(
		o.program.PublicKey().ToBytes(),
		&echo.InitializeVendingEchoInstructionAccounts{
			VendingMachine: address,
			Mint:           mint.PublicKey().ToBytes(),
			Payer:          payer.PublicKey().ToBytes(),
		},
		&echo.InitializeVendingEchoInstructionArgs{
			Price:      price,
			BufferSize: r.bufferSize,
		},
	)
	if err != nil {
		return nil, r.fail("encode", KindEncoding, err)
	}

	write, err := echo.NewVendingEchoInstruction(
		o.program.PublicKey().ToBytes(),
		&echo.VendingEchoInstructionAccounts{
			VendingMachine:    address,
			Payer:             payer.PublicKey().ToBytes(),
			PayerTokenAccount: holding.PublicKey().ToBytes(),
			Mint:              mint.PublicKey().ToBytes(),
		},
		&echo.VendingEchoInstructionArgs{
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

	data, err := o.readAccount(ctx, r, machine)
	if err != nil {
		return nil, err
	}

	var state echo.VendingMachineBuffer
	if err := state.Unmarshal(data); err != nil {
		return nil, r.fail("read_back", KindVerification, errors.Wrap(ErrVerificationFailed, err.Error()))
	}

	expected := echo.ExpectedPrefixedMessage(message, uint64(len(data)))
	switch {
	case state.Bump != bump:
		err = errors.Wrapf(ErrVerificationFailed, "machine bump %d, expected %d", state.Bump, bump)
	case state.Price != price:
		err = errors.Wrapf(ErrVerificationFailed, "machine price %d, expected %d", state.Price, price)
	case !bytes.Equal(expected, state.Message):
		err = errors.Wrapf(ErrVerificationFailed, "machine holds %q, expected %q", state.Message, expected)
	}
	if err != nil {
		return nil, r.fail("verify", KindVerification, err)
	}

	balanceAfter, err := o.assets.GetHoldingBalance(ctx, holding)
	if err != nil {
		return nil, r.fail("balance_after", KindCollaborator, err)
	}

	if balanceBefore < price || balanceBefore-balanceAfter != price {
		return nil, r.fail("verify", KindVerification, errors.Wrapf(ErrVerificationFailed, "balance went from %d to %d, expected a decrease of %d", balanceBefore, balanceAfter, price))
	}

	r.log.WithFields(logrus.Fields{
		"balance_before": balanceBefore,
		"balance_after":  balanceAfter,
	}).Debug("echo paid for")

	return &VendingResult{
		RunID:          r.id,
		VendingMachine: machine,
		Bump:           bump,
		Price:          price,
		Mint:           mint,
		HoldingAccount: holding,
		Message:        state.Message,
		Signature:      sig,
		BalanceBefore:  balanceBefore,
		BalanceAfter:   balanceAfter,
	}, nil
}
