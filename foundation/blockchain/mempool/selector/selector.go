// Package selector provides different transaction selecting algorithms.
package selector

import (
	"bytes"
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyOldest = "oldest"
	StrategySender = "sender"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyOldest: oldestSelect,
	StrategySender: senderSelect,
}

// Func defines a function that takes a mempool of transactions grouped by
// sender and selects howMany of them in an order based on the functions
// strategy. Receiving -1 for howMany must return all the transactions in the
// strategies ordering.
type Func func(transactions map[string][]database.Transaction, howMany int) []database.Transaction

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// byTime provides sorting support by the transaction timestamp with the
// hash breaking ties so the order is the same on every node.
type byTime []database.Transaction

// Len returns the number of transactions in the list.
func (bt byTime) Len() int {
	return len(bt)
}

// Less helps to sort the list by timestamp in ascending order.
func (bt byTime) Less(i, j int) bool {
	if bt[i].TimeStamp != bt[j].TimeStamp {
		return bt[i].TimeStamp < bt[j].TimeStamp
	}
	return bytes.Compare(bt[i].Hash, bt[j].Hash) < 0
}

// Swap moves transactions in the order of the timestamp value.
func (bt byTime) Swap(i, j int) {
	bt[i], bt[j] = bt[j], bt[i]
}
