package ledgersdk

import (
	"sort"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

// TransactionSource is the Request Source Archive (spec §3, component
// H): the byte-exact signed form of every (node, chunk) attempt a
// Transaction has produced, so that re-submitting or exporting a
// transaction never has to re-derive bytes that were already signed.
type TransactionSource struct {
	nodeOrder []AccountID
	// keyed by nodeID index (into nodeOrder) then chunk index.
	entries map[int]map[int]*sourceEntry
}

type sourceEntry struct {
	bodyBytes []byte
	sigMap    services.SignatureMapPB
	seenKeys  map[string]struct{}
}

func newTransactionSource(nodeOrder []AccountID) *TransactionSource {
	return &TransactionSource{
		nodeOrder: append([]AccountID(nil), nodeOrder...),
		entries:   make(map[int]map[int]*sourceEntry),
	}
}

func (s *TransactionSource) nodeIndex(id AccountID) int {
	for i, n := range s.nodeOrder {
		if n == id {
			return i
		}
	}
	return -1
}

// setBody records the unsigned body bytes for (nodeID, chunk), called
// once per attempt before any signatures are added.
func (s *TransactionSource) setBody(nodeID AccountID, chunk int, bodyBytes []byte) {
	idx := s.nodeIndex(nodeID)
	if idx < 0 {
		return
	}
	byChunk, ok := s.entries[idx]
	if !ok {
		byChunk = make(map[int]*sourceEntry)
		s.entries[idx] = byChunk
	}
	e, ok := byChunk[chunk]
	if !ok {
		e = &sourceEntry{seenKeys: make(map[string]struct{})}
		byChunk[chunk] = e
	}
	e.bodyBytes = bodyBytes
}

// addSignature records one signature for (nodeID, chunk), skipping a
// duplicate public-key prefix (see Transaction.buildSignedWire's doc
// comment).
func (s *TransactionSource) addSignature(nodeID AccountID, chunk int, pair services.SignaturePairPB) {
	idx := s.nodeIndex(nodeID)
	if idx < 0 {
		return
	}
	byChunk, ok := s.entries[idx]
	if !ok {
		byChunk = make(map[int]*sourceEntry)
		s.entries[idx] = byChunk
	}
	e, ok := byChunk[chunk]
	if !ok {
		e = &sourceEntry{seenKeys: make(map[string]struct{})}
		byChunk[chunk] = e
	}
	key := signaturePrefixKey(pair.PubKeyPrefix)
	if _, dup := e.seenKeys[key]; dup {
		return
	}
	e.seenKeys[key] = struct{}{}
	e.sigMap.SigPair = append(e.sigMap.SigPair, pair)
}

// signedTransaction returns the wire-ready TransactionPB for (nodeID, chunk).
func (s *TransactionSource) signedTransaction(nodeID AccountID, chunk int) (services.TransactionPB, bool) {
	idx := s.nodeIndex(nodeID)
	if idx < 0 {
		return services.TransactionPB{}, false
	}
	e, ok := s.entries[idx][chunk]
	if !ok || e.bodyBytes == nil {
		return services.TransactionPB{}, false
	}
	signed := services.SignedTransactionPB{BodyBytes: e.bodyBytes, SigMap: e.sigMap}
	signedBytes, err := services.Marshal(&signed)
	if err != nil {
		return services.TransactionPB{}, false
	}
	return services.TransactionPB{SignedTransactionBytes: signedBytes}, true
}

// TransactionListEntry is one node's signed transaction within an
// exported/imported TransactionList (spec §6's round-trip format).
type TransactionListEntry struct {
	NodeAccountID AccountID
	TransactionID TransactionID
	SignedBytes   []byte
}

// EncodeTransactionList renders entries in caller-given order into the
// round-trip wire format: a flat list of TransactionPB-equivalent byte
// strings, one per (node, chunk) pair, encoded with the same
// internal/services codec used elsewhere.
func EncodeTransactionList(entries []TransactionListEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, NewBasicParseError("transaction list must contain at least one entry", nil)
	}
	type wireList struct {
		Entries [][]byte `json:"entries"`
	}
	wl := wireList{Entries: make([][]byte, len(entries))}
	for i, e := range entries {
		wl.Entries[i] = e.SignedBytes
	}
	return services.Marshal(&wl)
}

// DecodeTransactionList parses and validates data per spec §6's rejected-
// input invariants. A TransactionList is the concatenation of one outer
// envelope per chunk per targeted node: entries are grouped into chunks
// by contiguous runs sharing the same transaction ID (the order an
// exporter emits them in, one chunk's node set after another), and:
//
//   - an empty list is rejected;
//   - within a chunk, node account IDs must be unique and in a single
//     monotonic (ascending shard, realm, num) order;
//   - every chunk after the first must target the same node account IDs,
//     in the same order, as the first chunk;
//   - no two chunks may carry the same transaction ID;
//   - every entry's signer set (by public key prefix, order-independent)
//     must match the first entry's — a TransactionList produced by
//     partially signing only some chunks/nodes is rejected rather than
//     silently accepted.
func DecodeTransactionList(data []byte) ([]TransactionListEntry, error) {
	type wireList struct {
		Entries [][]byte `json:"entries"`
	}
	var wl wireList
	if err := services.Unmarshal(data, &wl); err != nil {
		return nil, NewFromProtobufError("failed to decode transaction list", err)
	}
	if len(wl.Entries) == 0 {
		return nil, NewBasicParseError("transaction list must contain at least one entry", nil)
	}

	entries := make([]TransactionListEntry, len(wl.Entries))
	signerSets := make([][]string, len(wl.Entries))

	for i, raw := range wl.Entries {
		var outer services.TransactionPB
		if err := services.Unmarshal(raw, &outer); err != nil {
			return nil, NewFromProtobufError("failed to decode transaction list entry", err)
		}
		var signed services.SignedTransactionPB
		if err := services.Unmarshal(outer.SignedTransactionBytes, &signed); err != nil {
			return nil, NewFromProtobufError("failed to decode signed transaction", err)
		}
		var body services.TransactionBodyPB
		if err := services.Unmarshal(signed.BodyBytes, &body); err != nil {
			return nil, NewFromProtobufError("failed to decode transaction body", err)
		}

		nodeID := accountIDFromPB(body.NodeAccountID)
		txID := transactionIDFromPB(body.TransactionID)

		entries[i] = TransactionListEntry{NodeAccountID: nodeID, TransactionID: txID, SignedBytes: raw}
		signerSets[i] = sortedSignerPrefixes(signed.SigMap)
	}

	for i := 1; i < len(entries); i++ {
		if !equalStringSlices(signerSets[0], signerSets[i]) {
			return nil, NewBasicParseError("transaction list entries carry mismatched signer sets", nil)
		}
	}

	chunks := groupByChunk(entries)

	seenTxIDs := make(map[TransactionID]struct{}, len(chunks))
	var firstNodeOrder []AccountID

	for _, chunk := range chunks {
		if !isNodeOrderConsistent(chunk) {
			return nil, NewBasicParseError("transaction list node account ordering is not consistent", nil)
		}

		nodeOrder := make([]AccountID, len(chunk))
		seenNodes := make(map[AccountID]struct{}, len(chunk))
		for i, e := range chunk {
			if _, dup := seenNodes[e.NodeAccountID]; dup {
				return nil, NewBasicParseError("transaction list contains a duplicate node account entry", nil)
			}
			seenNodes[e.NodeAccountID] = struct{}{}
			nodeOrder[i] = e.NodeAccountID
		}
		if firstNodeOrder == nil {
			firstNodeOrder = nodeOrder
		} else if !equalAccountIDSlices(firstNodeOrder, nodeOrder) {
			return nil, NewBasicParseError("transaction list has inconsistent node account IDs across chunks", nil)
		}

		txID := chunk[0].TransactionID
		if _, dup := seenTxIDs[txID]; dup {
			return nil, NewBasicParseError("duplicate transaction ID between chunked transaction chunks", nil)
		}
		seenTxIDs[txID] = struct{}{}
	}

	return entries, nil
}

// groupByChunk splits entries into contiguous runs sharing the same
// transaction ID, preserving input order, mirroring how EncodeTransactionList
// (and every exporter it models) lays one chunk's per-node entries out
// before the next chunk's.
func groupByChunk(entries []TransactionListEntry) [][]TransactionListEntry {
	var chunks [][]TransactionListEntry
	start := 0
	for i := 1; i <= len(entries); i++ {
		if i == len(entries) || entries[i].TransactionID != entries[start].TransactionID {
			chunks = append(chunks, entries[start:i])
			start = i
		}
	}
	return chunks
}

// isNodeOrderConsistent reports whether the node account IDs of entries
// are in a single monotonic (ascending shard, realm, num) order, which is
// how every exporter in this module (and the upstream SDKs it mirrors)
// emits a chunk's per-node entries; an arbitrary shuffle is rejected
// rather than silently re-sorted, per spec §6.
func isNodeOrderConsistent(entries []TransactionListEntry) bool {
	ids := make([]AccountID, len(entries))
	for i, e := range entries {
		ids[i] = e.NodeAccountID
	}
	return sort.SliceIsSorted(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if a.Shard != b.Shard {
			return a.Shard < b.Shard
		}
		if a.Realm != b.Realm {
			return a.Realm < b.Realm
		}
		return a.Num < b.Num
	})
}

// sortedSignerPrefixes renders a signed transaction's signer public key
// prefixes as a sorted slice, so two signer sets can be compared without
// regard to the order signatures happened to be added in.
func sortedSignerPrefixes(sigMap services.SignatureMapPB) []string {
	out := make([]string, len(sigMap.SigPair))
	for i, pair := range sigMap.SigPair {
		out[i] = signaturePrefixKey(pair.PubKeyPrefix)
	}
	sort.Strings(out)
	return out
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalAccountIDSlices(a, b []AccountID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
