package ledgersdk

import (
	"crypto/ed25519"
	"encoding/hex"
)

// PrivateKey wraps an ed25519 private key, the signature scheme used
// throughout this module's examples and config loader. A production SDK
// would also support ECDSA(secp256k1); this module does not.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// ParsePrivateKey decodes a hex-encoded ed25519 private key, accepting
// either the 32-byte seed form or the 64-byte expanded form.
func ParsePrivateKey(s string) (PrivateKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return PrivateKey{}, NewBasicParseError("invalid private key hex", err)
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return PrivateKey{key: ed25519.NewKeyFromSeed(raw)}, nil
	case ed25519.PrivateKeySize:
		return PrivateKey{key: ed25519.PrivateKey(raw)}, nil
	default:
		return PrivateKey{}, NewBasicParseError("invalid private key length", nil)
	}
}

// PublicKeyBytes returns the raw public key bytes.
func (k PrivateKey) PublicKeyBytes() []byte {
	return append([]byte(nil), k.key.Public().(ed25519.PublicKey)...)
}

// Signer adapts this key to the Signer shape used by Operator/AddSigner.
func (k PrivateKey) Signer() Signer {
	key := k.key
	return func(message []byte) (signature, publicKeyBytes []byte, err error) {
		return ed25519.Sign(key, message), append([]byte(nil), key.Public().(ed25519.PublicKey)...), nil
	}
}
