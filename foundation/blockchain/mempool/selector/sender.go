package selector

import (
	"sort"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// senderSelect returns transactions giving each sender a turn so one busy
// sender can't fill every block, while respecting the timestamp order for
// each sender.
var senderSelect = func(m map[string][]database.Transaction, howMany int) []database.Transaction {

	/*
		Bill: {TS: 3}, {TS: 1}
		Pavl: {TS: 2}
		Edua: {TS: 5}, {TS: 4}, {TS: 6}
	*/

	// Sort the transactions per sender by timestamp and put the senders in
	// a stable order.
	senders := make([]string, 0, len(m))
	for key := range m {
		sort.Sort(byTime(m[key]))
		senders = append(senders, key)
	}
	sort.Strings(senders)

	// Pick the first transaction in the slice for each sender. Each iteration
	// represents a new row of selections. Keep doing that until all the
	// transactions have been selected.
	var rows [][]database.Transaction
	for {
		var row []database.Transaction
		for _, key := range senders {
			if len(m[key]) > 0 {
				row = append(row, m[key][0])
				m[key] = m[key][1:]
			}
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}

	/*
		0: Bill: {TS: 1}, Edua: {TS: 4}, Pavl: {TS: 2}
		1: Bill: {TS: 3}, Edua: {TS: 5}
		2: Edua: {TS: 6}
	*/

	// Sort each row by time unless we will take all transactions from that
	// row anyway. Keep pulling transactions from each row until the amount
	// is fulfilled or there are no more transactions.
	final := []database.Transaction{}
done:
	for _, row := range rows {
		if howMany < 0 {
			final = append(final, row...)
			continue
		}

		need := howMany - len(final)
		if len(row) > need {
			sort.Sort(byTime(row))
			final = append(final, row[:need]...)
			break done
		}
		final = append(final, row...)
	}

	return final
}
