package ledgersdk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountID(t *testing.T) {
	id, err := ParseAccountID("0.0.1001")
	require.NoError(t, err)
	assert.Equal(t, AccountID{Shard: 0, Realm: 0, Num: 1001}, id)
	assert.Equal(t, "0.0.1001", id.String())
}

func TestParseAccountID_StripsChecksumSuffix(t *testing.T) {
	id, err := ParseAccountID("0.0.1001-abcde")
	require.NoError(t, err)
	assert.Equal(t, AccountID{Shard: 0, Realm: 0, Num: 1001}, id)
}

func TestParseAccountID_Invalid(t *testing.T) {
	_, err := ParseAccountID("not-an-id")
	require.Error(t, err)
	var sdkErr *Error
	require.True(t, errors.As(err, &sdkErr))
	assert.Equal(t, ErrBasicParse, sdkErr.Kind)
}

func TestValidateChecksum_RoundTrip(t *testing.T) {
	id := AccountID{Shard: 0, Realm: 0, Num: 1001}
	withChecksum := id.ToStringWithChecksum(LedgerIDMainnet)
	assert.NoError(t, ValidateChecksum(withChecksum, LedgerIDMainnet))
}

func TestValidateChecksum_WrongLedgerFails(t *testing.T) {
	id := AccountID{Shard: 0, Realm: 0, Num: 1001}
	withChecksum := id.ToStringWithChecksum(LedgerIDMainnet)
	err := ValidateChecksum(withChecksum, LedgerIDTestnet)
	require.Error(t, err)
}

func TestValidateChecksum_NoSuffixAlwaysValid(t *testing.T) {
	assert.NoError(t, ValidateChecksum("0.0.1001", LedgerIDMainnet))
}

func TestChecksum_Deterministic(t *testing.T) {
	a := Checksum(LedgerIDMainnet, "0.0.1001")
	b := Checksum(LedgerIDMainnet, "0.0.1001")
	assert.Equal(t, a, b)
	assert.Len(t, a, 5)
}
