package ledgersdk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTransactionID_BackdatesValidStart(t *testing.T) {
	payer := AccountID{Shard: 0, Realm: 0, Num: 100}
	id := GenerateTransactionID(payer)
	assert.Equal(t, payer, id.AccountID)
	assert.True(t, id.ValidStart.Before(time.Now()))
	assert.False(t, id.HasNonce())
}

func TestTransactionID_StringAndParse_Canonical(t *testing.T) {
	payer := AccountID{Shard: 0, Realm: 0, Num: 100}
	id := TransactionID{AccountID: payer, ValidStart: time.Unix(1700000000, 123).UTC()}
	s := id.String()
	assert.Equal(t, "0.0.100@1700000000.000000123", s)

	parsed, err := ParseTransactionID(s)
	require.NoError(t, err)
	assert.Equal(t, id.AccountID, parsed.AccountID)
	assert.True(t, id.ValidStart.Equal(parsed.ValidStart))
	assert.False(t, parsed.Scheduled)
	assert.False(t, parsed.HasNonce())
}

func TestTransactionID_StringAndParse_ScheduledAndNonce(t *testing.T) {
	payer := AccountID{Shard: 0, Realm: 0, Num: 100}
	id := TransactionID{AccountID: payer, ValidStart: time.Unix(1700000000, 0).UTC(), Scheduled: true}
	id = id.WithNonce(7)

	s := id.String()
	assert.Equal(t, "0.0.100@1700000000.000000000?scheduled/7", s)

	parsed, err := ParseTransactionID(s)
	require.NoError(t, err)
	assert.True(t, parsed.Scheduled)
	assert.True(t, parsed.HasNonce())
	assert.Equal(t, int32(7), parsed.Nonce)
}

func TestParseTransactionID_AlternativeForm(t *testing.T) {
	parsed, err := ParseTransactionID("0.0.100-1700000000-123")
	require.NoError(t, err)
	assert.Equal(t, AccountID{Shard: 0, Realm: 0, Num: 100}, parsed.AccountID)
	assert.Equal(t, int64(1700000000), parsed.ValidStart.Unix())
	assert.Equal(t, 123, parsed.ValidStart.Nanosecond())
}

func TestParseTransactionID_Invalid(t *testing.T) {
	_, err := ParseTransactionID("garbage")
	require.Error(t, err)
}

func TestTransactionID_PlusNanos(t *testing.T) {
	id := TransactionID{ValidStart: time.Unix(1700000000, 0).UTC()}
	next := id.PlusNanos(5)
	assert.Equal(t, 5, next.ValidStart.Nanosecond())
	// original is untouched (value receiver).
	assert.Equal(t, 0, id.ValidStart.Nanosecond())
}
