package state_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/gossipchain/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newState(t *testing.T) *state.State {
	log, err := logger.New("TEST")
	ifErrFailNow(t, err)
	t.Cleanup(func() { log.Sync() })

	ev := func(v string, args ...any) {
		log.Debugw(fmt.Sprintf(v, args...), "traceid", "00000000-0000-0000-0000-000000000000")
	}

	st, err := state.New(state.Config{
		Difficulty:       0,
		MaxTransPerBlock: 2,
		SelectStrategy:   "oldest",
		Storage:          memory.New(),
		KnownPeers:       peer.NewSet(),
		Client:           peer.NewClient(time.Second, 4, ev),
		EvHandler:        ev,
	})
	ifErrFailNow(t, err)

	return st
}

// =============================================================================

func Test_MineAndProcessBlock(t *testing.T) {
	privateKey, publicKey, err := signature.GenerateKeyPair()
	ifErrFailNow(t, err)

	bill := database.NewAddress("bill", publicKey)

	miner := newState(t)
	follower := newState(t)

	t.Log("Given the need to mine a block and have a peer accept it.")
	{
		_, err := miner.MineNewBlock(context.Background())
		if !errors.Is(err, state.ErrNoTransactions) {
			t.Fatalf("\t%s\tShould not mine without transactions: %v", failed, err)
		}
		t.Logf("\t%s\tShould not mine without transactions.", success)

		for _, st := range []*state.State{miner, follower} {
			ifErrFailNow(t, st.SubmitAddress(bill))
		}

		var trans []database.Transaction
		for i := 0; i < 3; i++ {
			tx, err := database.SignTransaction([]byte(fmt.Sprintf("msg %d", i)), bill, privateKey, int64(1000+i))
			ifErrFailNow(t, err)
			trans = append(trans, tx)

			for _, st := range []*state.State{miner, follower} {
				added, err := st.SubmitTransaction(tx)
				if err != nil || !added {
					t.Fatalf("\t%s\tShould be able to submit the transaction: %v", failed, err)
				}
			}
		}
		t.Logf("\t%s\tShould be able to submit transactions to both nodes.", success)

		block, err := miner.MineNewBlock(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		if len(block.Transactions) != 2 || !bytes.Equal(block.Transactions[0].Hash, trans[0].Hash) {
			t.Fatalf("\t%s\tShould mine the two oldest transactions.", failed)
		}
		t.Logf("\t%s\tShould mine the two oldest transactions.", success)

		if err := follower.ProcessProposedBlock(block); err != nil {
			t.Fatalf("\t%s\tShould be able to process the block on the peer: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to process the block on the peer.", success)

		if !bytes.Equal(follower.RetrieveLastHash(), miner.RetrieveLastHash()) {
			t.Fatalf("\t%s\tShould have the same chain on both nodes.", failed)
		}
		if follower.RetrieveMempoolLength() != 1 || miner.RetrieveMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould leave one pending transaction on both nodes.", failed)
		}
		t.Logf("\t%s\tShould have the same state on both nodes.", success)

		if err := follower.ProcessProposedBlock(block); !errors.Is(err, database.ErrChainLinkage) {
			t.Fatalf("\t%s\tShould reject the block a second time: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject the block a second time.", success)
	}
}

func Test_UnknownSender(t *testing.T) {
	privateKey, publicKey, err := signature.GenerateKeyPair()
	ifErrFailNow(t, err)

	st := newState(t)

	t.Log("Given the need to reject transactions from unknown senders.")
	{
		tx, err := database.SignTransaction([]byte("hello"), database.NewAddress("ghost", publicKey), privateKey, 1)
		ifErrFailNow(t, err)

		added, err := st.SubmitTransaction(tx)
		if !errors.Is(err, mempool.ErrUnknownSender) || added {
			t.Fatalf("\t%s\tShould reject the transaction: %v", failed, err)
		}
		if len(st.RetrieveMempool()) != 0 {
			t.Fatalf("\t%s\tShould leave the pool empty.", failed)
		}
		t.Logf("\t%s\tShould reject the transaction.", success)
	}
}

func Test_KnownPeers(t *testing.T) {
	st := newState(t)

	t.Log("Given the need to maintain the known peers.")
	{
		node, err := peer.New("http://10.0.0.5:8080")
		ifErrFailNow(t, err)

		if !st.AddKnownPeer(node) || st.AddKnownPeer(node) {
			t.Fatalf("\t%s\tShould add the peer once.", failed)
		}
		if len(st.RetrieveKnownPeers()) != 1 {
			t.Fatalf("\t%s\tShould list the peer.", failed)
		}
		t.Logf("\t%s\tShould add the peer once.", success)

		if !st.RemoveKnownPeer(node) || len(st.RetrieveKnownPeers()) != 0 {
			t.Fatalf("\t%s\tShould remove the peer.", failed)
		}
		t.Logf("\t%s\tShould remove the peer.", success)

		status := st.RetrieveStatus()
		if status.Height != 0 || status.LastHash != nil || status.Mining {
			t.Fatalf("\t%s\tShould report an empty node: %+v", failed, status)
		}
		t.Logf("\t%s\tShould report an empty node.", success)
	}
}

// countingWorker records the calls made by the state.
type countingWorker struct {
	cancels int
}

func (w *countingWorker) Shutdown()           {}
func (w *countingWorker) StartMining() bool   { return true }
func (w *countingWorker) StopMining()         {}
func (w *countingWorker) IsMining() bool      { return false }
func (w *countingWorker) SignalCancelMining() { w.cancels++ }

func Test_ProposedBlockCancelsMining(t *testing.T) {
	privateKey, publicKey, err := signature.GenerateKeyPair()
	ifErrFailNow(t, err)

	bill := database.NewAddress("bill", publicKey)

	miner := newState(t)
	follower := newState(t)

	var w countingWorker
	follower.Worker = &w

	t.Log("Given the need to restart mining when a peer block is accepted.")
	{
		tx, err := database.SignTransaction([]byte("hello"), bill, privateKey, 1)
		ifErrFailNow(t, err)

		for _, st := range []*state.State{miner, follower} {
			ifErrFailNow(t, st.SubmitAddress(bill))
			_, err := st.SubmitTransaction(tx)
			ifErrFailNow(t, err)
		}

		block, err := miner.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		if err := follower.ProcessProposedBlock(block); err != nil {
			t.Fatalf("\t%s\tShould accept the block: %s", failed, err)
		}
		if w.cancels != 1 {
			t.Fatalf("\t%s\tShould signal the worker to cancel the round: got %d", failed, w.cancels)
		}
		t.Logf("\t%s\tShould signal the worker to cancel the round.", success)

		if err := follower.ProcessProposedBlock(block); err == nil || w.cancels != 1 {
			t.Fatalf("\t%s\tShould not signal the worker for a rejected block.", failed)
		}
		t.Logf("\t%s\tShould not signal the worker for a rejected block.", success)
	}
}

func Test_DifficultyLimit(t *testing.T) {
	type table struct {
		name       string
		difficulty int
		ok         bool
	}

	tt := []table{
		{name: "negative", difficulty: -1, ok: false},
		{name: "zero", difficulty: 0, ok: true},
		{name: "full", difficulty: 32, ok: true},
		{name: "beyond", difficulty: 33, ok: false},
	}

	t.Log("Given the need to only accept a difficulty a hash can meet.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				_, err := state.New(state.Config{Difficulty: tst.difficulty, MaxTransPerBlock: 1})
				if (err == nil) != tst.ok {
					t.Fatalf("\t%s\tTest %d:\tShould get the expected result for difficulty %d: %v", failed, testID, tst.difficulty, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get the expected result for difficulty %d.", success, testID, tst.difficulty)
			}

			t.Run(tst.name, f)
		}
	}
}
