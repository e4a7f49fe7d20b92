// Package addresses maintains the set of addresses known to the node. Only
// transactions signed by a known address are accepted into the mempool.
package addresses

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
)

// Set of errors returned by Add.
var (
	ErrExists      = errors.New("address already exists")
	ErrInvalidHash = errors.New("address hash does not match name and key")
)

// Addresses manages the addresses that have registered with the network.
type Addresses struct {
	mu   sync.RWMutex
	info map[string]database.Address
}

// New constructs an empty set of addresses.
func New() *Addresses {
	return &Addresses{
		info: make(map[string]database.Address),
	}
}

// Add validates and stores the address.
func (a *Addresses) Add(addr database.Address) error {
	if err := addr.Validate(); err != nil {
		return fmt.Errorf("%s: %w", addr, ErrInvalidHash)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := addr.Key()
	if _, exists := a.info[key]; exists {
		return fmt.Errorf("%s: %w", addr, ErrExists)
	}

	a.info[key] = addr

	return nil
}

// Lookup returns the address with the specified hash.
func (a *Addresses) Lookup(hash []byte) (database.Address, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	addr, exists := a.info[signature.Hex(hash)]
	return addr, exists
}

// Count returns the number of known addresses.
func (a *Addresses) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.info)
}

// Copy makes a copy of the known addresses ordered by name and then hash.
func (a *Addresses) Copy() []database.Address {
	a.mu.RLock()
	defer a.mu.RUnlock()

	addrs := make([]database.Address, 0, len(a.info))
	for _, addr := range a.info {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Name != addrs[j].Name {
			return addrs[i].Name < addrs[j].Name
		}
		return addrs[i].Key() < addrs[j].Key()
	})

	return addrs
}
