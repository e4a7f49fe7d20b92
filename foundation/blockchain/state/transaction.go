package state

import (
	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// SubmitTransaction accepts a transaction from a wallet or a peer for
// inclusion in a future block. It reports false with no error when the
// transaction is already pending.
func (s *State) SubmitTransaction(tx database.Transaction) (bool, error) {
	s.evHandler("state: SubmitTransaction: started: tx[%s]", tx)
	defer s.evHandler("state: SubmitTransaction: completed")

	added, err := s.mempool.Add(tx)
	if err != nil {
		return false, err
	}

	s.evHandler("state: SubmitTransaction: tx[%s]: added[%v]: pending[%d]", tx, added, s.mempool.Count())

	return added, nil
}

// RetrieveMempool returns a copy of the pending transactions.
func (s *State) RetrieveMempool() []database.Transaction {
	return s.mempool.Copy()
}

// RetrieveMempoolLength returns the number of pending transactions.
func (s *State) RetrieveMempoolLength() int {
	return s.mempool.Count()
}
