package main

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/code-payments/echo-client/pkg/app"
	"github.com/code-payments/echo-client/pkg/common"
)

type config struct {
	SolanaProviderURL string `mapstructure:"solana_provider_url"`
	ProgramID         string `mapstructure:"program_id"`

	// PayerKeypair is an optional URL to a keypair file in the Solana CLI
	// format. A fresh payer is generated and funded through an airdrop when
	// it isn't set.
	PayerKeypair string `mapstructure:"payer_keypair"`
}

func init() {
	_ = viper.BindEnv("solana_provider_url", "SOLANA_PROVIDER_URL")
	_ = viper.BindEnv("program_id", "PROGRAM_ID")
	_ = viper.BindEnv("payer_keypair", "PAYER_KEYPAIR")
}

func loadConfig() (*config, error) {
	var c config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(c.SolanaProviderURL) == 0 {
		return nil, errors.New("SOLANA_PROVIDER_URL must be set")
	}
	if len(c.ProgramID) == 0 {
		return nil, errors.New("PROGRAM_ID must be set")
	}
	return &c, nil
}

func loadKeypair(fileURL string) (*common.Account, error) {
	b, err := app.LoadFile(fileURL)
	if err != nil {
		return nil, err
	}

	// The Solana CLI writes the 64 byte private key as a JSON array.
	var raw []byte
	var ints []int
	if err := json.Unmarshal(b, &ints); err != nil {
		return nil, errors.Wrap(err, "invalid keypair file")
	}
	for _, v := range ints {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("invalid keypair byte: %d", v)
		}
		raw = append(raw, byte(v))
	}

	return common.NewAccountFromPrivateKeyBytes(raw)
}
