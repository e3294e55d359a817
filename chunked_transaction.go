package ledgersdk

import (
	"context"
)

// ReceiptWaiter polls for a transaction's receipt and returns once it
// reaches a terminal status, or ctx expires. It is supplied by callers of
// ExecuteChunked so this file need not import the receipt poller
// directly (transaction_receipt_query.go depends on Engine, and Engine
// does not depend on the chunked driver).
type ReceiptWaiter func(ctx context.Context, txID TransactionID) error

// ExecuteChunked drives a ChunkedRequest to completion across all of its
// declared chunks (spec §4.D): it computes the chunk count, rejects
// payloads too large for the declared maximum, and submits each chunk in
// order, waiting on the first chunk's result before sending the second
// (so a chunked submission can't race itself out of order at the node),
// and optionally waiting for each chunk's receipt before sending the
// next, when the request demands it.
//
// It returns the per-chunk results in submission order, so results[0] is
// chunk 0's response. On failure it returns the results of the chunks
// that completed before the error.
func ExecuteChunked(ctx context.Context, engine *Engine, req ChunkedRequest, waitReceipt ReceiptWaiter) ([]any, error) {
	maxChunks, chunkSize, payload := req.ChunkData()
	data := ChunkData{MaxChunks: maxChunks, ChunkSize: chunkSize, Payload: payload}
	used := data.UsedChunks()
	if used > maxChunks {
		return nil, NewMaxChunksExceededError(used, maxChunks)
	}

	initialTxID, hasTxID := req.ExplicitTransactionID()
	if !hasTxID {
		payer, ok := engine.operator.PayerAccountID()
		if !ok {
			return nil, NewNoPayerAccountOrTransactionIDError()
		}
		initialTxID = GenerateTransactionID(payer)
	}

	results := make([]any, used)
	waitBetween := req.WaitForReceiptBetweenChunks()

	for k := 0; k < used; k++ {
		currentTxID := initialTxID
		if k > 0 {
			// nanosecond-incrementing valid-start keeps each chunk's
			// identifier distinct and monotonic relative to chunk 0,
			// without disturbing the shared InitialTxID chunks are
			// grouped under.
			currentTxID = initialTxID.PlusNanos(k)
		}

		info := ChunkInfo{
			Current:     k,
			Total:       used,
			InitialTxID: initialTxID,
			CurrentTxID: currentTxID,
		}
		chunkReq := req.WithChunk(info)

		result, err := engine.Execute(ctx, chunkReq)
		if err != nil {
			return results[:k], err
		}
		results[k] = result

		// chunk 0's receipt is always awaited before chunk 1 is sent,
		// unconditionally, so ordered acceptance at the node is never
		// racing itself; chunks after that only wait when the request
		// demands it via waitBetween.
		mustWait := k == 0 || waitBetween
		if mustWait && waitReceipt != nil {
			if err := waitReceipt(ctx, currentTxID); err != nil {
				return results[:k+1], err
			}
		}
	}

	return results, nil
}
