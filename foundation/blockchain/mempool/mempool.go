// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
)

// Set of errors returned by Add, in the order the checks are performed.
var (
	ErrUnknownSender    = errors.New("sender address is unknown")
	ErrInvalidSignature = errors.New("signature does not verify")
	ErrInvalidHash      = errors.New("transaction hash does not match content")
)

// AddressBook represents the behavior required to find the public key
// for the sender of a transaction.
type AddressBook interface {
	Lookup(hash []byte) (database.Address, bool)
}

// =============================================================================

// Mempool represents a cache of pending transactions keyed by their hash.
type Mempool struct {
	book     AddressBook
	pool     map[string]database.Transaction
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New(book AddressBook) (*Mempool, error) {
	return NewWithStrategy(book, selector.StrategyOldest)
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(book AddressBook, strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		book:     book,
		pool:     make(map[string]database.Transaction),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add validates the transaction and adds it to the mempool. A transaction
// that is already pending is not added again and false is returned with no
// error. The pool is not touched when an error is returned.
func (mp *Mempool) Add(tx database.Transaction) (bool, error) {
	sender, exists := mp.book.Lookup(tx.SenderHash)
	if !exists {
		return false, fmt.Errorf("%s: %w", signature.Hex(tx.SenderHash), ErrUnknownSender)
	}

	if err := tx.VerifySignature(sender.PublicKey); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if err := tx.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	key := tx.Key()
	if _, exists := mp.pool[key]; exists {
		return false, nil
	}

	mp.pool[key] = tx

	return true, nil
}

// Remove removes a transaction from the mempool if it exists.
func (mp *Mempool) Remove(tx database.Transaction) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, tx.Key())
}

// ContainsAll reports whether every one of the transactions is pending.
func (mp *Mempool) ContainsAll(trans []database.Transaction) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	for _, tx := range trans {
		if _, exists := mp.pool[tx.Key()]; !exists {
			return false
		}
	}

	return true
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Transaction)
}

// Copy returns a snapshot of the pending transactions ordered by timestamp.
func (mp *Mempool) Copy() []database.Transaction {
	mp.mu.RLock()
	trans := make([]database.Transaction, 0, len(mp.pool))
	for _, tx := range mp.pool {
		trans = append(trans, tx)
	}
	mp.mu.RUnlock()

	sort.Slice(trans, func(i, j int) bool {
		if trans[i].TimeStamp != trans[j].TimeStamp {
			return trans[i].TimeStamp < trans[j].TimeStamp
		}
		return trans[i].Key() < trans[j].Key()
	})

	return trans
}

// PickBest uses the configured select strategy to return the next set
// of transactions for the next block.
func (mp *Mempool) PickBest(howMany int) []database.Transaction {

	// Group the transactions by sender.
	m := make(map[string][]database.Transaction)
	mp.mu.RLock()
	{
		if howMany == -1 {
			howMany = len(mp.pool)
		}

		for _, tx := range mp.pool {
			from := signature.Hex(tx.SenderHash)
			m[from] = append(m[from], tx)
		}
	}
	mp.mu.RUnlock()

	return mp.selectFn(m, howMany)
}
