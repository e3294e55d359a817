package ledgersdk

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivateKey_SeedForm(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	seed := priv.Seed()

	key, err := ParsePrivateKey(hex.EncodeToString(seed))
	require.NoError(t, err)
	assert.Equal(t, []byte(pub), key.PublicKeyBytes())
}

func TestParsePrivateKey_ExpandedForm(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	key, err := ParsePrivateKey(hex.EncodeToString(priv))
	require.NoError(t, err)
	assert.Equal(t, []byte(pub), key.PublicKeyBytes())
}

func TestParsePrivateKey_InvalidHex(t *testing.T) {
	_, err := ParsePrivateKey("not-hex")
	require.Error(t, err)
}

func TestParsePrivateKey_WrongLength(t *testing.T) {
	_, err := ParsePrivateKey(hex.EncodeToString([]byte{1, 2, 3}))
	require.Error(t, err)
}

func TestPrivateKey_Signer_ProducesVerifiableSignature(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	key, err := ParsePrivateKey(hex.EncodeToString(priv))
	require.NoError(t, err)

	sign := key.Signer()
	msg := []byte("transaction body bytes")
	sig, pub, err := sign(msg)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub, msg, sig))
}
