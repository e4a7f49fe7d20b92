// Package ledger maintains the chain of accepted blocks. A block is only
// appended when it extends the last known block and passes every validation
// rule; there is no support for forks or reorganization.
package ledger

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for writing and reading the accepted blocks.
type Storage interface {
	Write(number uint64, block database.Block) error
	ReadAll() ([]database.Block, error)
	Close() error
}

// Pool represents the behavior required from the mempool to accept
// a block and drain its transactions.
type Pool interface {
	ContainsAll(trans []database.Transaction) bool
	Remove(tx database.Transaction)
}

// Config represents the configuration required to construct the ledger.
type Config struct {
	Difficulty       int
	MaxTransPerBlock int
	Pool             Pool
	Storage          Storage
	EvHandler        func(v string, args ...any)
}

// Ledger manages the chain of accepted blocks.
type Ledger struct {
	mu        sync.RWMutex
	blocks    []database.Block
	cfg       Config
	evHandler func(v string, args ...any)
}

// New constructs a ledger and replays any blocks already held by the
// storage. Replayed blocks are validated but not checked against the pool.
func New(cfg Config) (*Ledger, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	l := Ledger{
		cfg:       cfg,
		evHandler: ev,
	}

	blocks, err := cfg.Storage.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading blocks: %w", err)
	}

	for i, block := range blocks {
		if err := l.validate(block, false); err != nil {
			return nil, fmt.Errorf("replaying block %d: %w", i+1, err)
		}
		l.blocks = append(l.blocks, block)
	}

	ev("ledger: New: replayed blocks[%d]", len(l.blocks))

	return &l, nil
}

// Close releases the storage.
func (l *Ledger) Close() error {
	return l.cfg.Storage.Close()
}

// Difficulty returns the number of leading zero bytes a block hash needs.
func (l *Ledger) Difficulty() int {
	return l.cfg.Difficulty
}

// MaxTransPerBlock returns the largest number of transactions a block
// can carry.
func (l *Ledger) MaxTransPerBlock() int {
	return l.cfg.MaxTransPerBlock
}

// LastHash returns the hash of the latest block or nil for an empty chain.
func (l *Ledger) LastHash() []byte {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.lastHash()
}

// LatestBlock returns the latest block and false for an empty chain.
func (l *Ledger) LatestBlock() (database.Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.blocks) == 0 {
		return database.Block{}, false
	}

	return l.blocks[len(l.blocks)-1], true
}

// Count returns the number of blocks in the chain.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.blocks)
}

// Copy returns a copy of the chain in order.
func (l *Ledger) Copy() []database.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]database.Block(nil), l.blocks...)
}

// Append validates the block against the chain and the pool. On success the
// block is stored, added to the chain and its transactions are removed from
// the pool. On failure nothing changes and the error wraps the sentinel of
// the first rule that failed.
func (l *Ledger) Append(block database.Block) error {
	return l.add(block, true)
}

// Import adds a block that was already accepted by another node. All rules
// are applied except pool membership since committed transactions are never
// pending on this node.
func (l *Ledger) Import(block database.Block) error {
	return l.add(block, false)
}

// =============================================================================

func (l *Ledger) add(block database.Block, checkPool bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.validate(block, checkPool); err != nil {
		l.evHandler("ledger: add: blk[%s]: REJECTED: %s", block, err)
		return err
	}

	number := uint64(len(l.blocks)) + 1
	if err := l.cfg.Storage.Write(number, block); err != nil {
		return fmt.Errorf("writing block %d: %w", number, err)
	}

	l.blocks = append(l.blocks, block)

	if l.cfg.Pool != nil {
		for _, tx := range block.Transactions {
			l.cfg.Pool.Remove(tx)
		}
	}

	l.evHandler("ledger: add: blk[%s]: number[%d]: ACCEPTED", block, number)

	return nil
}

func (l *Ledger) validate(block database.Block, checkPool bool) error {
	var pool database.Pool
	if checkPool && l.cfg.Pool != nil {
		pool = l.cfg.Pool
	}

	return block.ValidateBlock(l.lastHash(), l.cfg.Difficulty, l.cfg.MaxTransPerBlock, pool, l.evHandler)
}

func (l *Ledger) lastHash() []byte {
	if len(l.blocks) == 0 {
		return nil
	}

	return l.blocks[len(l.blocks)-1].Hash
}
