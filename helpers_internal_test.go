package ledgersdk

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledger-sdk-go/internal/inproc"
)

// mustParsePrivateKey adapts a freshly generated ed25519 key into this
// module's PrivateKey, for tests that need a real Signer without loading
// one from a config file.
func mustParsePrivateKey(t *testing.T, priv ed25519.PrivateKey) PrivateKey {
	t.Helper()
	key, err := ParsePrivateKey(hex.EncodeToString(priv))
	require.NoError(t, err)
	return key
}

// newTestInprocChannel starts a fresh in-process transport and registers
// its cleanup, for tests exercising a Request's Execute method without a
// real dialed connection.
func newTestInprocChannel(t *testing.T) *inproc.Channel {
	t.Helper()
	ch, err := inproc.New()
	require.NoError(t, err)
	t.Cleanup(ch.Close)
	return ch
}
