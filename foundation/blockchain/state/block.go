package state

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are not enough transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// MineNewBlock attempts to create a new block with a proper hash that can become
// the next block in the chain. The timestamp is fixed for the whole search.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: pick transactions")

	trans := s.mempool.PickBest(s.ledger.MaxTransPerBlock())
	if len(trans) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: trans[%d]", len(trans))

	// Attempt to create a new block by solving the POW puzzle. This can be cancelled.
	block, err := database.POW(ctx, database.POWArgs{
		PrevHash:   s.ledger.LastHash(),
		Trans:      trans,
		Difficulty: s.ledger.Difficulty(),
		TimeStamp:  time.Now().UTC().UnixMilli(),
		EvHandler:  s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: append to ledger")

	if err := s.ledger.Append(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// ProcessProposedBlock takes a block received from a peer, validates it and
// if that passes, adds the block to the local blockchain.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: blk[%s]", block)
	defer s.evHandler("state: ProcessProposedBlock: completed: blk[%s]", block)

	if err := s.ledger.Append(block); err != nil {
		return err
	}

	// If a mining operation is running it is working on a stale previous
	// hash and needs to start over.
	if s.Worker != nil {
		s.Worker.SignalCancelMining()
	}

	return nil
}

// RetrieveBlocks returns a copy of the chain.
func (s *State) RetrieveBlocks() []database.Block {
	return s.ledger.Copy()
}

// RetrieveLastHash returns the hash of the latest block or nil when the
// chain is empty.
func (s *State) RetrieveLastHash() []byte {
	return s.ledger.LastHash()
}

// =============================================================================

// ErrNoWorker is returned when mining is requested and no worker has
// been registered with the state.
var ErrNoWorker = errors.New("no mining worker registered")

// StartMining asks the registered worker to start mining. It returns false
// when mining was already running.
func (s *State) StartMining() (bool, error) {
	if s.Worker == nil {
		return false, ErrNoWorker
	}
	return s.Worker.StartMining(), nil
}

// StopMining asks the registered worker to stop mining.
func (s *State) StopMining() error {
	if s.Worker == nil {
		return ErrNoWorker
	}
	s.Worker.StopMining()
	return nil
}
