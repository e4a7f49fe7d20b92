package selector

import (
	"sort"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// oldestSelect returns the transactions that have been waiting the longest
// regardless of who sent them.
var oldestSelect = func(m map[string][]database.Transaction, howMany int) []database.Transaction {
	var all []database.Transaction
	for _, trans := range m {
		all = append(all, trans...)
	}

	sort.Sort(byTime(all))

	if howMany >= 0 && len(all) > howMany {
		all = all[:howMany]
	}

	return all
}
