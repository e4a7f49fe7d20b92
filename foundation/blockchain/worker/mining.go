package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
)

// miningOperations keeps running mining rounds until the context is
// cancelled.
func (w *Worker) miningOperations(ctx context.Context) {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for ctx.Err() == nil {
		if !w.runMiningOperation(ctx) {
			continue
		}

		// Nothing was mined, wait before trying again.
		select {
		case <-time.After(w.pause):
		case <-ctx.Done():
		}
	}
}

// runMiningOperation takes the next batch of transactions from the mempool
// and tries to write a new block to the ledger. It returns true when the
// loop should pause before the next round, which only happens when there
// is nothing to mine.
func (w *Worker) runMiningOperation(ctx context.Context) bool {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// Drain the cancel mining channel before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	// Create a context so this round can be cancelled on its own.
	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Can't return from this function until this G is complete.
	var wg sync.WaitGroup
	wg.Add(1)

	// This G exists to cancel the mining round.
	go func() {
		defer wg.Done()

		select {
		case <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
			cancel()
		case <-roundCtx.Done():
		}
	}()

	t := time.Now()
	block, err := w.state.MineNewBlock(roundCtx)
	duration := time.Since(t)

	cancel()
	wg.Wait()

	w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			w.evHandler("worker: runMiningOperation: MINING: no transactions in mempool")
			return true
		case roundCtx.Err() != nil && errors.Is(err, roundCtx.Err()):
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
			return false
		default:
			// The block was discarded, most likely because a peer block won
			// the race. The pool may still hold work so start over at once.
			w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
			return false
		}
	}

	// WOW, we mined a block. Propose the new block to the network. The
	// result of each send is only logged.
	w.evHandler("worker: runMiningOperation: MINING: SOLVED: blk[%s]", block)
	w.state.NetSendBlockToPeers(context.Background(), block)

	return false
}
