// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/addresses"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/storage/memory"
)

// EventHandler defines a function that is called when events
// occur in the processing of the node.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining.
type Worker interface {
	Shutdown()
	StartMining() bool
	StopMining()
	IsMining() bool
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Difficulty       int
	MaxTransPerBlock int
	SelectStrategy   string
	SelfAddress      string
	Storage          ledger.Storage
	KnownPeers       *peer.Set
	Client           *peer.Client
	EvHandler        EventHandler
}

// State manages the blockchain database.
type State struct {
	evHandler EventHandler
	selfAddr  string

	mu   sync.RWMutex
	self peer.Node

	knownPeers *peer.Set
	client     *peer.Client
	addresses  *addresses.Addresses
	mempool    *mempool.Mempool
	ledger     *ledger.Ledger

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.MaxTransPerBlock <= 0 {
		return nil, errors.New("max transactions per block must be greater than zero")
	}
	if cfg.Difficulty < 0 {
		return nil, errors.New("difficulty can't be negative")
	}
	if cfg.Difficulty > sha256.Size {
		return nil, fmt.Errorf("difficulty can't be more than %d bytes", sha256.Size)
	}

	strg := cfg.Storage
	if strg == nil {
		strg = memory.New()
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewSet()
	}

	client := cfg.Client
	if client == nil {
		client = peer.NewClient(5*time.Second, 8, ev)
	}

	// Create the address registry that decides which senders are
	// allowed to submit transactions.
	addrs := addresses.New()

	// Construct a mempool with the specified select strategy.
	strategy := cfg.SelectStrategy
	if strategy == "" {
		strategy = selector.StrategyOldest
	}
	mp, err := mempool.NewWithStrategy(addrs, strategy)
	if err != nil {
		return nil, err
	}

	// Construct the ledger which replays any blocks in storage.
	ldgr, err := ledger.New(ledger.Config{
		Difficulty:       cfg.Difficulty,
		MaxTransPerBlock: cfg.MaxTransPerBlock,
		Pool:             mp,
		Storage:          strg,
		EvHandler:        ev,
	})
	if err != nil {
		return nil, err
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		evHandler: ev,
		selfAddr:  cfg.SelfAddress,

		knownPeers: knownPeers,
		client:     client,
		addresses:  addrs,
		mempool:    mp,
		ledger:     ldgr,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the database file is properly closed.
	defer func() {
		s.ledger.Close()
	}()

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// Status represents a summary of the node.
type Status struct {
	Self       peer.Node   `json:"self"`
	Height     int         `json:"height"`
	LastHash   []byte      `json:"lastHash"`
	Pending    int         `json:"pending"`
	Addresses  int         `json:"addresses"`
	KnownPeers []peer.Node `json:"knownPeers"`
	Mining     bool        `json:"mining"`
	Difficulty int         `json:"difficulty"`
}

// RetrieveStatus returns a summary of the node.
func (s *State) RetrieveStatus() Status {
	var mining bool
	if s.Worker != nil {
		mining = s.Worker.IsMining()
	}

	return Status{
		Self:       s.RetrieveSelf(),
		Height:     s.ledger.Count(),
		LastHash:   s.ledger.LastHash(),
		Pending:    s.mempool.Count(),
		Addresses:  s.addresses.Count(),
		KnownPeers: s.RetrieveKnownPeers(),
		Mining:     mining,
		Difficulty: s.ledger.Difficulty(),
	}
}
