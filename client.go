package ledgersdk

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// defaultNamedNetworkAddresses seeds the initial NetworkSnapshot for the
// three well-known named networks, before the first mirror-driven
// refresh replaces it (spec §4.F). Each entry is a placeholder single
// endpoint per seed node; a production deployment's real list is long
// and maintained out of band, refreshed continuously by the Managed
// Network Supervisor once a mirror node address is configured.
var defaultNamedNetworkAddresses = map[string]map[AccountID][]Endpoint{
	"mainnet": {
		{Shard: 0, Realm: 0, Num: 3}: {{IP: [4]byte{35, 237, 200, 180}, Port: 50211}},
	},
	"testnet": {
		{Shard: 0, Realm: 0, Num: 3}: {{IP: [4]byte{34, 94, 106, 61}, Port: 50211}},
	},
	"previewnet": {
		{Shard: 0, Realm: 0, Num: 3}: {{IP: [4]byte{35, 231, 208, 148}, Port: 50211}},
	},
}

// Client is the root facade (component F, spec §4.F): it owns the
// Managed Network Supervisor, the atomically-swappable operator, and the
// execution engine every public operation is ultimately driven through.
// The operator, ledger ID and default settings are atomic cells and the
// node directory is an RCU snapshot, so Execute and the atomic setters are
// safe for concurrent use by any number of goroutines. SetMirrorNetwork
// and SetLogger replace plain fields without synchronization and are not
// safe to call concurrently with other methods.
type Client struct {
	network  *ManagedNetwork
	operator *operatorCell
	engine   *Engine
	logger   *logger

	ledgerID atomic.Pointer[LedgerID]

	maxFee         atomic.Uint64
	autoChecksums  atomic.Bool
	regenerateTxID atomic.Bool
	defaultTimeout atomic.Int64 // time.Duration, nanoseconds
}

// newClient is the common constructor path shared by every exported
// New*/From* constructor: it wires the network, operator and engine
// together and establishes the atomic defaults (spec §4.F).
func newClient(initial *NetworkSnapshot, fetch AddressBookFetcher, ledger LedgerID, log *logger) *Client {
	if log == nil {
		log = defaultLogger()
	}
	c := &Client{
		operator: newOperatorCell(nil),
		logger:   log,
	}
	c.network = NewManagedNetwork(initial, fetch, log)
	c.ledgerID.Store(&ledger)
	c.maxFee.Store(DefaultMaxTransactionFee)
	c.autoChecksums.Store(true)
	c.regenerateTxID.Store(true)
	c.defaultTimeout.Store(int64(DefaultRequestTimeout))
	c.engine = NewEngine(c.network, c.operator, c.LedgerID, c.autoChecksums.Load, c.defaultTimeout0, c.regenerateTxID.Load, log)
	return c
}

// defaultTimeout0 adapts the atomic.Int64 duration cell to the
// func() time.Duration shape NewEngine expects.
func (c *Client) defaultTimeout0() time.Duration {
	return time.Duration(c.defaultTimeout.Load())
}

// NewClientForName resolves one of "mainnet", "testnet", or "previewnet"
// by name (spec §4.F/§6).
func NewClientForName(name string) (*Client, error) {
	ledger, ok := LedgerIDForName(name)
	if !ok {
		return nil, NewBasicParseError("unrecognized network name: "+name, nil)
	}
	addrs, ok := defaultNamedNetworkAddresses[name]
	if !ok {
		return nil, NewBasicParseError("unrecognized network name: "+name, nil)
	}
	return newClient(NewNetworkSnapshot(addrs), nil, ledger, nil), nil
}

// NewClientForMainnet constructs a Client seeded with the mainnet node
// list.
func NewClientForMainnet() *Client {
	c, _ := NewClientForName("mainnet")
	return c
}

// NewClientForTestnet constructs a Client seeded with the testnet node
// list.
func NewClientForTestnet() *Client {
	c, _ := NewClientForName("testnet")
	return c
}

// NewClientForPreviewnet constructs a Client seeded with the previewnet
// node list.
func NewClientForPreviewnet() *Client {
	c, _ := NewClientForName("previewnet")
	return c
}

// NewClientForAddresses builds a Client from an explicit node directory
// and ledger ID, with no mirror-driven refresh (spec §4.F
// `from_addresses`). Callers wanting periodic refresh should use
// SetMirrorNetwork after construction.
func NewClientForAddresses(addresses map[AccountID][]Endpoint, ledger LedgerID) *Client {
	return newClient(NewNetworkSnapshot(addresses), nil, ledger, nil)
}

// SetMirrorNetwork installs (or replaces) the address-book fetcher used
// for periodic refresh, restarting the Managed Network Supervisor's
// background loop against the client's current snapshot.
func (c *Client) SetMirrorNetwork(fetch AddressBookFetcher) {
	current := c.network.Load()
	_ = c.network.Close(context.Background())
	c.network = NewManagedNetwork(current, fetch, c.logger)
	c.engine = NewEngine(c.network, c.operator, c.LedgerID, c.autoChecksums.Load, c.defaultTimeout0, c.regenerateTxID.Load, c.logger)
}

// SetOperator installs the account that pays for and signs requests.
func (c *Client) SetOperator(accountID AccountID, sign Signer) {
	c.operator.Set(&Operator{AccountID: accountID, Sign: sign})
}

// Operator returns the current operator, or nil if none is set.
func (c *Client) Operator() *Operator { return c.operator.Get() }

// LedgerID returns the ledger this client is bound to, for checksum
// validation.
func (c *Client) LedgerID() LedgerID {
	if p := c.ledgerID.Load(); p != nil {
		return *p
	}
	return LedgerID{}
}

// SetLedgerID rebinds the client to a different ledger (e.g. a custom
// network), affecting subsequent checksum validation only.
func (c *Client) SetLedgerID(ledger LedgerID) { c.ledgerID.Store(&ledger) }

// SetMaxTransactionFee sets the default declared max fee for
// transactions that don't set their own.
func (c *Client) SetMaxTransactionFee(fee uint64) { c.maxFee.Store(fee) }

// MaxTransactionFee returns the current default max fee.
func (c *Client) MaxTransactionFee() uint64 { return c.maxFee.Load() }

// SetAutoValidateChecksums toggles automatic checksum validation of
// embedded entity IDs before the first attempt of every request (spec
// §4.B).
func (c *Client) SetAutoValidateChecksums(enabled bool) { c.autoChecksums.Store(enabled) }

// SetDefaultRegenerateTransactionID toggles whether a transaction whose
// attempt rejects with StatusTransactionExpired gets a fresh transaction
// ID auto-generated for the next attempt (only applies to
// caller-unpinned IDs; spec §4.C).
func (c *Client) SetDefaultRegenerateTransactionID(enabled bool) { c.regenerateTxID.Store(enabled) }

// SetRequestTimeout sets the default per-request retry budget (spec
// §4.C, default DefaultRequestTimeout).
func (c *Client) SetRequestTimeout(d time.Duration) { c.defaultTimeout.Store(int64(d)) }

// SetLogger replaces the structured logger used for engine retries,
// health transitions, and network refreshes.
func (c *Client) SetLogger(log *logger) {
	c.logger = log
	c.engine.logger = log
}

// Execute drives req to completion through this client's execution
// engine (spec §4.C), the single entry point every concrete transaction
// and query type is ultimately submitted through.
func (c *Client) Execute(ctx context.Context, req Request) (any, error) {
	return c.engine.Execute(ctx, req)
}

// Close stops the Managed Network Supervisor's background refresh loop
// and releases every dialed node channel, bounding the two independent
// shutdown sequences with an errgroup so neither blocks the other (spec
// §4.F). The refresh loop's own drain-then-close behavior is grounded on
// microbatch.Batcher.Shutdown's idiom, adapted here from batch draining
// to periodic-refresh draining.
func (c *Client) Close(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.network.Close(gctx) })
	g.Go(func() error { return c.network.Load().CloseChannels() })
	return g.Wait()
}
