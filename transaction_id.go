package ledgersdk

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// TransactionID identifies one logical transaction: the payer account, a
// valid-start instant, an optional nonce (for child transactions spawned
// by a scheduled/batch parent), and a scheduled flag.
type TransactionID struct {
	AccountID  AccountID
	ValidStart time.Time
	Nonce      int32
	Scheduled  bool
	hasNonce   bool
}

// GenerateTransactionID mints a fresh TransactionID for payer, offsetting
// the current wall clock backwards by a random 5-8s to avoid clock-skew
// rejection by consensus nodes that reject transactions with a valid-start
// too close to "now" on their own clock.
func GenerateTransactionID(payer AccountID) TransactionID {
	offset := time.Duration(5000+rand.Intn(3000)) * time.Millisecond
	return TransactionID{
		AccountID:  payer,
		ValidStart: time.Now().Add(-offset),
	}
}

// WithNonce returns a copy of id carrying the given nonce (used for child
// transactions of a scheduled/batch parent).
func (id TransactionID) WithNonce(nonce int32) TransactionID {
	id.Nonce = nonce
	id.hasNonce = true
	return id
}

// HasNonce reports whether a nonce was explicitly set (as opposed to the
// zero value).
func (id TransactionID) HasNonce() bool { return id.hasNonce }

// PlusNanos returns a copy of id with ValidStart advanced by n
// nanoseconds, used to derive chunk k>0's transaction ID from chunk 0's
// while preserving ordering and uniqueness.
func (id TransactionID) PlusNanos(n int) TransactionID {
	id.ValidStart = id.ValidStart.Add(time.Duration(n) * time.Nanosecond)
	return id
}

// String renders the canonical text form:
// "<acct>@<unix-seconds>.<nanos>[?scheduled][/<nonce>]".
func (id TransactionID) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s@%d.%09d", id.AccountID, id.ValidStart.Unix(), id.ValidStart.Nanosecond())
	if id.Scheduled {
		sb.WriteString("?scheduled")
	}
	if id.hasNonce {
		fmt.Fprintf(&sb, "/%d", id.Nonce)
	}
	return sb.String()
}

// ParseTransactionID parses either the canonical form
// "<acct>@<seconds>.<nanos>[?scheduled][/<nonce>]" or the alternative form
// "<acct>-<seconds>-<nanos>".
func ParseTransactionID(s string) (TransactionID, error) {
	orig := s

	var nonce int32
	var hasNonce bool
	if slash := strings.IndexByte(s, '/'); slash >= 0 {
		n, err := strconv.ParseInt(s[slash+1:], 10, 32)
		if err != nil {
			return TransactionID{}, NewBasicParseError(fmt.Sprintf("invalid transaction ID %q: bad nonce", orig), err)
		}
		nonce = int32(n)
		hasNonce = true
		s = s[:slash]
	}

	var scheduled bool
	if idx := strings.IndexByte(s, '?'); idx >= 0 {
		if s[idx+1:] != "scheduled" {
			return TransactionID{}, NewBasicParseError(fmt.Sprintf("invalid transaction ID %q: unknown flag", orig), nil)
		}
		scheduled = true
		s = s[:idx]
	}

	var acctPart, secPart, nanoPart string
	if at := strings.IndexByte(s, '@'); at >= 0 {
		acctPart = s[:at]
		rest := s[at+1:]
		dot := strings.IndexByte(rest, '.')
		if dot < 0 {
			return TransactionID{}, NewBasicParseError(fmt.Sprintf("invalid transaction ID %q: missing nanos", orig), nil)
		}
		secPart, nanoPart = rest[:dot], rest[dot+1:]
	} else {
		// alternative "<acct>-<seconds>-<nanos>" form: acct itself may
		// contain a checksum suffix introduced by '-', so split from the
		// right, taking the last two '-' separated fields as sec/nanos.
		parts := strings.Split(s, "-")
		if len(parts) < 3 {
			return TransactionID{}, NewBasicParseError(fmt.Sprintf("invalid transaction ID %q", orig), nil)
		}
		nanoPart = parts[len(parts)-1]
		secPart = parts[len(parts)-2]
		acctPart = strings.Join(parts[:len(parts)-2], "-")
	}

	acct, err := ParseAccountID(acctPart)
	if err != nil {
		return TransactionID{}, err
	}
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return TransactionID{}, NewBasicParseError(fmt.Sprintf("invalid transaction ID %q: bad seconds", orig), err)
	}
	nanos, err := strconv.ParseInt(nanoPart, 10, 64)
	if err != nil {
		return TransactionID{}, NewBasicParseError(fmt.Sprintf("invalid transaction ID %q: bad nanos", orig), err)
	}

	return TransactionID{
		AccountID:  acct,
		ValidStart: time.Unix(sec, nanos).UTC(),
		Nonce:      nonce,
		hasNonce:   hasNonce,
		Scheduled:  scheduled,
	}, nil
}
