package ledger

import (
	"time"

	"github.com/code-payments/echo-client/pkg/config"
	"github.com/code-payments/echo-client/pkg/config/env"
	"github.com/code-payments/echo-client/pkg/config/memory"
	"github.com/code-payments/echo-client/pkg/config/wrapper"
)

const (
	envConfigPrefix = "LEDGER_"

	ConfirmationTimeoutConfigEnvName = envConfigPrefix + "CONFIRMATION_TIMEOUT"
	defaultConfirmationTimeout       = time.Minute

	ConfirmationPollIntervalConfigEnvName = envConfigPrefix + "CONFIRMATION_POLL_INTERVAL"
	defaultConfirmationPollInterval       = 500 * time.Millisecond

	RpcRateLimitConfigEnvName = envConfigPrefix + "RPC_RATE_LIMIT"
	defaultRpcRateLimit       = 10 // per second
)

type conf struct {
	confirmationTimeout      config.Duration
	confirmationPollInterval config.Duration
	rpcRateLimit             config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			confirmationTimeout:      env.NewDurationConfig(ConfirmationTimeoutConfigEnvName, defaultConfirmationTimeout),
			confirmationPollInterval: env.NewDurationConfig(ConfirmationPollIntervalConfigEnvName, defaultConfirmationPollInterval),
			rpcRateLimit:             env.NewUint64Config(RpcRateLimitConfigEnvName, defaultRpcRateLimit),
		}
	}
}

type testOverrides struct {
	confirmationTimeout      time.Duration
	confirmationPollInterval time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			confirmationTimeout:      wrapper.NewDurationConfig(memory.NewConfig(overrides.confirmationTimeout), defaultConfirmationTimeout),
			confirmationPollInterval: wrapper.NewDurationConfig(memory.NewConfig(overrides.confirmationPollInterval), defaultConfirmationPollInterval),
			rpcRateLimit:             wrapper.NewUint64Config(memory.NewConfig(uint64(0)), defaultRpcRateLimit),
		}
	}
}
