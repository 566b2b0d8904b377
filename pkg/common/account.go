package common

import (
	"bytes"
	"crypto/ed25519"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

// Account is a ledger address, optionally holding the private key that can
// sign on its behalf.
type Account struct {
	publicKey  *Key
	privateKey *Key // Optional
}

func NewAccountFromPublicKey(publicKey *Key) (*Account, error) {
	account := &Account{publicKey: publicKey}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPublicKeyBytes(publicKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(publicKey)
	if err != nil {
		return nil, err
	}
	return NewAccountFromPublicKey(key)
}

func NewAccountFromPublicKeyString(publicKey string) (*Account, error) {
	key, err := NewKeyFromString(publicKey)
	if err != nil {
		return nil, err
	}
	return NewAccountFromPublicKey(key)
}

// NewAccountFromPrivateKey derives the public key from a 64 byte ed25519
// private key.
func NewAccountFromPrivateKey(privateKey *Key) (*Account, error) {
	if err := privateKey.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating private key")
	}
	if privateKey.IsPublic() {
		return nil, errors.New("private key isn't private")
	}

	publicKey, err := NewKeyFromBytes(ed25519.PrivateKey(privateKey.ToBytes()).Public().(ed25519.PublicKey))
	if err != nil {
		return nil, errors.Wrap(err, "error deriving public key")
	}

	account := &Account{publicKey: publicKey, privateKey: privateKey}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPrivateKeyBytes(privateKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(privateKey)
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(key)
}

// NewRandomAccount generates a fresh keypair.
func NewRandomAccount() (*Account, error) {
	key, err := NewRandomKey()
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(key)
}

func (a *Account) PublicKey() *Key {
	return a.publicKey
}

func (a *Account) PrivateKey() *Key {
	return a.privateKey
}

// CanSign reports whether the account holds a private key.
func (a *Account) CanSign() bool {
	return a.privateKey != nil
}

func (a *Account) Sign(message []byte) ([]byte, error) {
	signer, err := a.ToSigner()
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(signer, message), nil
}

// ToSigner returns the private key in the form expected by solana.Transaction.Sign.
func (a *Account) ToSigner() (ed25519.PrivateKey, error) {
	if a.privateKey == nil {
		return nil, errors.Errorf("private key not available for %s", a)
	}
	return ed25519.PrivateKey(a.privateKey.ToBytes()), nil
}

// IsOnCurve is false for program derived addresses.
func (a *Account) IsOnCurve() bool {
	return IsOnCurve(a.PublicKey().ToBytes())
}

func (a *Account) Equals(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return bytes.Equal(a.PublicKey().ToBytes(), other.PublicKey().ToBytes())
}

func (a *Account) Validate() error {
	if a == nil {
		return errors.New("account is nil")
	}
	if err := a.publicKey.Validate(); err != nil {
		return errors.Wrap(err, "error validating public key")
	}
	if !a.publicKey.IsPublic() {
		return errors.New("public key isn't public")
	}

	if a.privateKey == nil {
		return nil
	}
	if err := a.privateKey.Validate(); err != nil {
		return errors.Wrap(err, "error validating private key")
	}
	if a.privateKey.IsPublic() {
		return errors.New("private key isn't private")
	}

	derived := ed25519.PrivateKey(a.privateKey.ToBytes()).Public().(ed25519.PublicKey)
	if !bytes.Equal(a.publicKey.ToBytes(), derived) {
		return errors.New("private key doesn't map to public key")
	}
	return nil
}

func (a *Account) String() string {
	return a.publicKey.ToBase58()
}

// IsOnCurve reports whether the key decodes to a valid ed25519 point.
func IsOnCurve(pubKey ed25519.PublicKey) bool {
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(pubKey)
	return err == nil
}
