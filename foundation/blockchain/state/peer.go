package state

import (
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
)

// AddKnownPeer provides the ability to add a new peer to the known peer
// list. A node that matches this node is ignored.
func (s *State) AddKnownPeer(node peer.Node) bool {
	if self := s.RetrieveSelf(); self.Address != "" && self.Match(node) {
		return false
	}

	added := s.knownPeers.Add(node)
	if added {
		s.evHandler("state: AddKnownPeer: node[%s]", node)
	}

	return added
}

// RemoveKnownPeer provides the ability to remove a peer from
// the known peer list.
func (s *State) RemoveKnownPeer(node peer.Node) bool {
	removed := s.knownPeers.Remove(node)
	if removed {
		s.evHandler("state: RemoveKnownPeer: node[%s]", node)
	}

	return removed
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Node {
	return s.knownPeers.Copy(s.RetrieveSelf())
}

// RetrieveSelf returns the address this node is known by on the network.
// The value is empty until the node has bootstrapped.
func (s *State) RetrieveSelf() peer.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.self
}

func (s *State) setSelf(node peer.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.self = node
}
