package common

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Key is an ed25519 public or private key with its cached base58 encoding.
type Key struct {
	raw     []byte
	encoded string
}

func NewKeyFromBytes(value []byte) (*Key, error) {
	k := &Key{raw: value, encoded: base58.Encode(value)}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func NewKeyFromString(value string) (*Key, error) {
	raw, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding string as base58")
	}

	k := &Key{raw: raw, encoded: value}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// NewRandomKey generates an ed25519 private key.
func NewRandomKey() (*Key, error) {
	_, privateKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "error generating private key")
	}
	return NewKeyFromBytes(privateKey)
}

func (k *Key) ToBytes() []byte {
	return k.raw
}

func (k *Key) ToBase58() string {
	return k.encoded
}

func (k *Key) IsPublic() bool {
	return len(k.raw) != ed25519.PrivateKeySize
}

func (k *Key) Validate() error {
	if k == nil {
		return errors.New("key is nil")
	}
	if len(k.raw) != ed25519.PublicKeySize && len(k.raw) != ed25519.PrivateKeySize {
		return errors.Errorf("invalid key length %d", len(k.raw))
	}
	if base58.Encode(k.raw) != k.encoded {
		return errors.New("bytes and string representation don't match")
	}
	return nil
}
