package ledgersdk

// ChunkInfo identifies one chunk of a chunked request (spec §3): its
// index, the total chunk count, the first chunk's transaction ID, this
// chunk's own transaction ID, and the node it is targeted at. For a
// single-chunk request, Total == 1 and Current == 0.
type ChunkInfo struct {
	Current     int
	Total       int
	InitialTxID TransactionID
	CurrentTxID TransactionID
	NodeID      AccountID
}

// ChunkData describes a chunked request's layout (spec §3): the declared
// maximum chunk count, the chunk size, and the payload to split.
type ChunkData struct {
	MaxChunks int
	ChunkSize int
	Payload   []byte
}

// UsedChunks returns max(1, ceil(len(payload)/chunkSize)), per spec §3/§4.D.
func (d ChunkData) UsedChunks() int {
	if len(d.Payload) == 0 {
		return 1
	}
	used := (len(d.Payload) + d.ChunkSize - 1) / d.ChunkSize
	if used < 1 {
		used = 1
	}
	return used
}

// Slice returns chunk k's payload slice: [k*ChunkSize, min((k+1)*ChunkSize, len)).
func (d ChunkData) Slice(k int) []byte {
	start := k * d.ChunkSize
	end := start + d.ChunkSize
	if end > len(d.Payload) {
		end = len(d.Payload)
	}
	if start > len(d.Payload) {
		start = len(d.Payload)
	}
	return d.Payload[start:end]
}
