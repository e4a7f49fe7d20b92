// Package worker implements mining for the blockchain.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
)

// Config represents the configuration required to run the worker.
type Config struct {
	MiningPause time.Duration
	EvHandler   state.EventHandler
}

// Worker manages the POW workflows for the blockchain.
type Worker struct {
	state        *state.State
	pause        time.Duration
	evHandler    state.EventHandler
	wg           sync.WaitGroup
	mu           sync.Mutex
	stop         context.CancelFunc
	cancelMining chan bool
}

// Run creates a worker and registers the worker with the state package.
// Mining does not start until StartMining is called.
func Run(st *state.State, cfg Config) *Worker {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	pause := cfg.MiningPause
	if pause <= 0 {
		pause = 10 * time.Second
	}

	w := Worker{
		state:        st,
		pause:        pause,
		evHandler:    ev,
		cancelMining: make(chan bool, 1),
	}

	// Register this worker with the state package.
	st.Worker = &w

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown stops mining and waits for the mining goroutine to terminate.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop mining")
	w.StopMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	w.wg.Wait()
}

// StartMining starts the mining goroutine. It returns false when mining
// is already running.
func (w *Worker) StartMining() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stop != nil {
		w.evHandler("worker: StartMining: already running")
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.stop = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.miningOperations(ctx)
	}()

	w.evHandler("worker: StartMining: mining started")

	return true
}

// StopMining signals the mining goroutine to stop and returns immediately.
// The attempt in progress is the last one performed.
func (w *Worker) StopMining() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stop == nil {
		return
	}

	w.stop()
	w.stop = nil

	w.evHandler("worker: StopMining: mining stopped")
}

// IsMining reports whether the mining goroutine has been started and
// not stopped.
func (w *Worker) IsMining() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.stop != nil
}

// SignalCancelMining signals the current mining round to stop immediately
// and start a new round. If there is already a signal pending in the
// channel, just return.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}
