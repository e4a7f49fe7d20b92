package state

import (
	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// SubmitAddress registers a new address with the node.
func (s *State) SubmitAddress(addr database.Address) error {
	s.evHandler("state: SubmitAddress: started: addr[%s]", addr)
	defer s.evHandler("state: SubmitAddress: completed")

	return s.addresses.Add(addr)
}

// RetrieveAddresses returns a copy of the known addresses.
func (s *State) RetrieveAddresses() []database.Address {
	return s.addresses.Copy()
}

// LookupAddress returns the address for the specified hash.
func (s *State) LookupAddress(hash []byte) (database.Address, bool) {
	return s.addresses.Lookup(hash)
}
