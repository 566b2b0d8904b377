package solana

import (
	"fmt"
	"strings"
)

type Environment string

const (
	EnvironmentDev  Environment = "https://api.devnet.solana.com"
	EnvironmentTest Environment = "https://api.testnet.solana.com"
	EnvironmentProd Environment = "https://api.mainnet-beta.solana.com"
)

const explorerBaseURL = "https://explorer.solana.com"

// Cluster returns the explorer cluster name for the RPC endpoint. Endpoints
// that aren't a public cluster are treated as devnet.
func (e Environment) Cluster() string {
	endpoint := strings.ToLower(string(e))
	switch {
	case strings.Contains(endpoint, "mainnet"):
		return "mainnet-beta"
	case strings.Contains(endpoint, "testnet"):
		return "testnet"
	case strings.Contains(endpoint, "localhost"), strings.Contains(endpoint, "127.0.0.1"):
		return "custom"
	}
	return "devnet"
}

// ExplorerTransactionURL links to the transaction on the public block explorer.
func (e Environment) ExplorerTransactionURL(sig Signature) string {
	cluster := e.Cluster()
	if cluster == "mainnet-beta" {
		return fmt.Sprintf("%s/tx/%s", explorerBaseURL, sig.String())
	}
	return fmt.Sprintf("%s/tx/%s?cluster=%s", explorerBaseURL, sig.String(), cluster)
}
