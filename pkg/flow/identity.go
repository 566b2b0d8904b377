package flow

import (
	"github.com/code-payments/echo-client/pkg/common"
)

// IdentityProvider creates fresh signing identities.
type IdentityProvider interface {
	GenerateKeypair() (*common.Account, error)
}

type randomIdentityProvider struct{}

// NewRandomIdentityProvider returns an IdentityProvider backed by
// crypto/rand ed25519 keys.
func NewRandomIdentityProvider() IdentityProvider {
	return &randomIdentityProvider{}
}

// GenerateKeypair implements IdentityProvider.GenerateKeypair
func (p *randomIdentityProvider) GenerateKeypair() (*common.Account, error) {
	return common.NewRandomAccount()
}
