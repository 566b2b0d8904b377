package solana

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
)

func TestEnvironment_Cluster(t *testing.T) {
	assert.Equal(t, "devnet", EnvironmentDev.Cluster())
	assert.Equal(t, "testnet", EnvironmentTest.Cluster())
	assert.Equal(t, "mainnet-beta", EnvironmentProd.Cluster())
	assert.Equal(t, "custom", Environment("http://localhost:8899").Cluster())
	assert.Equal(t, "devnet", Environment("https://rpc.example.com").Cluster())
}

func TestEnvironment_ExplorerTransactionURL(t *testing.T) {
	var sig Signature
	sig[0] = 1

	encoded := base58.Encode(sig[:])
	assert.Equal(t, "https://explorer.solana.com/tx/"+encoded+"?cluster=devnet", EnvironmentDev.ExplorerTransactionURL(sig))
	assert.Equal(t, "https://explorer.solana.com/tx/"+encoded, EnvironmentProd.ExplorerTransactionURL(sig))
}
