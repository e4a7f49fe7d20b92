// Package merkle provides the queue reduction used to summarize an ordered
// set of hashes into a single merkle root for block validation.
//
// This is not the padded balanced tree usually associated with merkle trees.
// Leaf hashes are pushed into a FIFO queue in order; while more than one
// element remains, the two front elements are popped, hashed together and
// the result is pushed to the back. For a non power of two number of leafs
// this pairs nodes unevenly. Every node on the network must reduce the same
// way or blocks won't validate across peers.
package merkle

import "crypto/sha256"

// EmptyRoot returns the root used for a set with no hashes, the SHA-256 of
// empty input.
func EmptyRoot() []byte {
	h := sha256.Sum256(nil)
	return h[:]
}

// Root calculates the merkle root for the ordered set of hashes.
func Root(hashes [][]byte) []byte {
	if len(hashes) == 0 {
		return EmptyRoot()
	}

	queue := make([][]byte, len(hashes))
	copy(queue, hashes)

	for len(queue) > 1 {
		left, right := queue[0], queue[1]
		queue = queue[2:]

		h := sha256.New()
		h.Write(left)
		h.Write(right)
		queue = append(queue, h.Sum(nil))
	}

	return queue[0]
}
