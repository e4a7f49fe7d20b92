// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// Memory represents the serialization implementation for reading and storing
// blocks in memory using a slice. This implements the ledger.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.Block
}

// New constructs an Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write stores the block in memory. Block numbers start at 1 and must
// be written in order.
func (m *Memory) Write(number uint64, block database.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if exp := uint64(len(m.blocks)) + 1; number != exp {
		return fmt.Errorf("block %d is out of order, exp %d", number, exp)
	}

	m.blocks = append(m.blocks, block)

	return nil
}

// ReadAll returns every stored block in chain order.
func (m *Memory) ReadAll() ([]database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]database.Block(nil), m.blocks...), nil
}
