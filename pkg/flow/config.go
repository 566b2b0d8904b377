package flow

import (
	"context"

	"github.com/pkg/errors"

	"github.com/code-payments/echo-client/pkg/config"
	"github.com/code-payments/echo-client/pkg/config/env"
	"github.com/code-payments/echo-client/pkg/config/memory"
	"github.com/code-payments/echo-client/pkg/config/wrapper"
	"github.com/code-payments/echo-client/pkg/solana"
	"github.com/code-payments/echo-client/pkg/solana/echo"
)

const (
	envConfigPrefix = "ECHO_CLIENT_"

	CommitmentConfigEnvName = envConfigPrefix + "COMMITMENT"
	defaultCommitment       = "confirmed"

	BufferSizeConfigEnvName = envConfigPrefix + "BUFFER_SIZE"
	defaultBufferSize       = echo.DefaultBufferSize

	AuthorizedBufferSeedConfigEnvName = envConfigPrefix + "AUTHORIZED_BUFFER_SEED"
	defaultAuthorizedBufferSeed       = 2187 // 3^7

	VendingPriceConfigEnvName = envConfigPrefix + "VENDING_PRICE"
	defaultVendingPrice       = 1000

	VendingMintSupplyConfigEnvName = envConfigPrefix + "VENDING_MINT_SUPPLY"
	defaultVendingMintSupply       = 10000

	VendingMintDecimalsConfigEnvName = envConfigPrefix + "VENDING_MINT_DECIMALS"
	defaultVendingMintDecimals       = 0

	AirdropLamportsConfigEnvName = envConfigPrefix + "AIRDROP_LAMPORTS"
	defaultAirdropLamports       = 1_000_000_000 // 1 SOL

	RejectOversizedMessagesConfigEnvName = envConfigPrefix + "REJECT_OVERSIZED_MESSAGES"
	defaultRejectOversizedMessages       = false
)

type conf struct {
	commitment              config.String
	bufferSize              config.Uint64
	authorizedBufferSeed    config.Uint64
	vendingPrice            config.Uint64
	vendingMintSupply       config.Uint64
	vendingMintDecimals     config.Uint64
	airdropLamports         config.Uint64
	rejectOversizedMessages config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			commitment:              env.NewStringConfig(CommitmentConfigEnvName, defaultCommitment),
			bufferSize:              env.NewUint64Config(BufferSizeConfigEnvName, defaultBufferSize),
			authorizedBufferSeed:    env.NewUint64Config(AuthorizedBufferSeedConfigEnvName, defaultAuthorizedBufferSeed),
			vendingPrice:            env.NewUint64Config(VendingPriceConfigEnvName, defaultVendingPrice),
			vendingMintSupply:       env.NewUint64Config(VendingMintSupplyConfigEnvName, defaultVendingMintSupply),
			vendingMintDecimals:     env.NewUint64Config(VendingMintDecimalsConfigEnvName, defaultVendingMintDecimals),
			airdropLamports:         env.NewUint64Config(AirdropLamportsConfigEnvName, defaultAirdropLamports),
			rejectOversizedMessages: env.NewBoolConfig(RejectOversizedMessagesConfigEnvName, defaultRejectOversizedMessages),
		}
	}
}

func (c *conf) getCommitment(ctx context.Context) (solana.Commitment, error) {
	return solana.CommitmentFromString(c.commitment.Get(ctx))
}

func (c *conf) getDecimals(ctx context.Context) (uint8, error) {
	decimals := c.vendingMintDecimals.Get(ctx)
	if decimals > 255 {
		return 0, errors.Errorf("invalid mint decimals: %d", decimals)
	}
	return uint8(decimals), nil
}

type testOverrides struct {
	commitment              string
	bufferSize              uint64
	authorizedBufferSeed    uint64
	vendingPrice            uint64
	vendingMintSupply       uint64
	airdropLamports         uint64
	rejectOversizedMessages bool
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			commitment:              wrapper.NewStringConfig(memory.NewConfig(overrides.commitment), defaultCommitment),
			bufferSize:              wrapper.NewUint64Config(memory.NewConfig(overrides.bufferSize), defaultBufferSize),
			authorizedBufferSeed:    wrapper.NewUint64Config(memory.NewConfig(overrides.authorizedBufferSeed), defaultAuthorizedBufferSeed),
			vendingPrice:            wrapper.NewUint64Config(memory.NewConfig(overrides.vendingPrice), defaultVendingPrice),
			vendingMintSupply:       wrapper.NewUint64Config(memory.NewConfig(overrides.vendingMintSupply), defaultVendingMintSupply),
			vendingMintDecimals:     wrapper.NewUint64Config(memory.NewConfig(nil), defaultVendingMintDecimals),
			airdropLamports:         wrapper.NewUint64Config(memory.NewConfig(overrides.airdropLamports), defaultAirdropLamports),
			rejectOversizedMessages: wrapper.NewBoolConfig(memory.NewConfig(overrides.rejectOversizedMessages), defaultRejectOversizedMessages),
		}
	}
}
