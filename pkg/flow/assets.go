package flow

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/echo-client/pkg/common"
	"github.com/code-payments/echo-client/pkg/ledger"
	"github.com/code-payments/echo-client/pkg/metrics"
	"github.com/code-payments/echo-client/pkg/solana/system"
	"github.com/code-payments/echo-client/pkg/solana/token"
)

const assetsMetricsName = "flow.token_asset_program"

// AssetProgram manages the fungible token used to pay for vending echoes.
type AssetProgram interface {
	// CreateAsset creates a mint controlled by authority.
	CreateAsset(ctx context.Context, payer, authority *common.Account, decimals uint8) (*common.Account, error)

	// CreateHoldingAccount creates owner's associated token account for mint.
	CreateHoldingAccount(ctx context.Context, payer, mint, owner *common.Account) (*common.Account, error)

	MintInto(ctx context.Context, payer, mint, holding, authority *common.Account, amount uint64) error

	GetHoldingBalance(ctx context.Context, holding *common.Account) (uint64, error)
}

type tokenAssetProgram struct {
	log      *logrus.Entry
	conf     *conf
	ledger   ledger.Ledger
	composer *Composer
	identity IdentityProvider
}

// NewTokenAssetProgram returns an AssetProgram on the SPL token and associated
// token account programs.
func NewTokenAssetProgram(l ledger.Ledger, identity IdentityProvider, configProvider ConfigProvider) AssetProgram {
	return &tokenAssetProgram{
		log:      logrus.StandardLogger().WithField("type", "flow/assets"),
		conf:     configProvider(),
		ledger:   l,
		composer: NewComposer(l),
		identity: identity,
	}
}

// CreateAsset implements AssetProgram.CreateAsset
func (p *tokenAssetProgram) CreateAsset(ctx context.Context, payer, authority *common.Account, decimals uint8) (*common.Account, error) {
	tracer := metrics.TraceMethodCall(ctx, assetsMetricsName, "CreateAsset")
	defer tracer.End()

	mint, err := p.identity.GenerateKeypair()
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	rent, err := p.ledger.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	plan, err := Compose(
		payer,
		[]*common.Account{mint},
		system.CreateAccount(
			payer.PublicKey().ToBytes(),
			mint.PublicKey().ToBytes(),
			token.ProgramKey,
			rent,
			token.MintAccountSize,
		),
		token.InitializeMint(
			mint.PublicKey().ToBytes(),
			authority.PublicKey().ToBytes(),
			nil,
			decimals,
		),
	)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	if err := p.submit(ctx, plan); err != nil {
		tracer.OnError(err)
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"method": "CreateAsset",
		"mint":   mint.String(),
	}).Debug("mint created")

	return mint, nil
}

// CreateHoldingAccount implements AssetProgram.CreateHoldingAccount
func (p *tokenAssetProgram) CreateHoldingAccount(ctx context.Context, payer, mint, owner *common.Account) (*common.Account, error) {
	tracer := metrics.TraceMethodCall(ctx, assetsMetricsName, "CreateHoldingAccount")
	defer tracer.End()

	instruction, address, err := token.CreateAssociatedTokenAccount(
		payer.PublicKey().ToBytes(),
		owner.PublicKey().ToBytes(),
		mint.PublicKey().ToBytes(),
	)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	holding, err := common.NewAccountFromPublicKeyBytes(address)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	plan, err := Compose(payer, nil, instruction)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	if err := p.submit(ctx, plan); err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return holding, nil
}

// MintInto implements AssetProgram.MintInto
func (p *tokenAssetProgram) MintInto(ctx context.Context, payer, mint, holding, authority *common.Account, amount uint64) error {
	tracer := metrics.TraceMethodCall(ctx, assetsMetricsName, "MintInto")
	defer tracer.End()

	plan, err := Compose(
		payer,
		[]*common.Account{authority},
		token.MintTo(
			mint.PublicKey().ToBytes(),
			holding.PublicKey().ToBytes(),
			authority.PublicKey().ToBytes(),
			amount,
		),
	)
	if err != nil {
		tracer.OnError(err)
		return err
	}

	err = p.submit(ctx, plan)
	if err != nil {
		tracer.OnError(err)
	}
	return err
}

// GetHoldingBalance implements AssetProgram.GetHoldingBalance
func (p *tokenAssetProgram) GetHoldingBalance(ctx context.Context, holding *common.Account) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, assetsMetricsName, "GetHoldingBalance")
	defer tracer.End()

	commitment, err := p.conf.getCommitment(ctx)
	if err != nil {
		tracer.OnError(err)
		return 0, err
	}

	balance, err := p.ledger.GetTokenBalance(ctx, holding.PublicKey().ToBytes(), commitment)
	if err != nil {
		tracer.OnError(err)
	}
	return balance, err
}

func (p *tokenAssetProgram) submit(ctx context.Context, plan *Plan) error {
	commitment, err := p.conf.getCommitment(ctx)
	if err != nil {
		return err
	}

	_, err = p.composer.Submit(ctx, plan, commitment)
	return err
}
