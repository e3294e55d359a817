package ledgersdk

import "google.golang.org/grpc"

// NodeEntry describes one remote consensus node (spec §3): an immutable
// account identifier, its ordered IPv4 endpoint set, health shared across
// address-book updates, and a lazily-constructed channel.
type NodeEntry struct {
	AccountID AccountID
	Endpoints []Endpoint
	Health    *NodeHealth

	channel *channelCell
}

// Channel returns this node's channel, dialing it on first use.
func (n *NodeEntry) Channel() (grpc.ClientConnInterface, error) {
	return n.channel.get()
}

// CloseChannel closes this node's channel if it was ever dialed.
func (n *NodeEntry) CloseChannel() error {
	return n.channel.closeIfDialed()
}

func newNodeEntry(accountID AccountID, endpoints []Endpoint, health *NodeHealth, channel *channelCell) *NodeEntry {
	if health == nil {
		health = NewNodeHealth()
	}
	if channel == nil {
		channel = newChannelCell(accountID, endpoints)
	}
	return &NodeEntry{
		AccountID: accountID,
		Endpoints: endpoints,
		Health:    health,
		channel:   channel,
	}
}
