package merkle_test

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/merkle"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func leaf(x string) []byte {
	h := sha256.Sum256([]byte(x))
	return h[:]
}

func pair(left, right []byte) []byte {
	h := sha256.New()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

// =============================================================================

func Test_Root(t *testing.T) {
	a, b, c, d, e := leaf("a"), leaf("b"), leaf("c"), leaf("d"), leaf("e")

	type table struct {
		name   string
		hashes [][]byte
		exp    []byte
	}

	tt := []table{
		{name: "empty", hashes: nil, exp: merkle.EmptyRoot()},
		{name: "single", hashes: [][]byte{a}, exp: a},
		{name: "two", hashes: [][]byte{a, b}, exp: pair(a, b)},
		{name: "three", hashes: [][]byte{a, b, c}, exp: pair(c, pair(a, b))},
		{name: "four", hashes: [][]byte{a, b, c, d}, exp: pair(pair(a, b), pair(c, d))},
		{name: "five", hashes: [][]byte{a, b, c, d, e}, exp: pair(pair(c, d), pair(e, pair(a, b)))},
	}

	t.Log("Given the need to reduce an ordered set of hashes with a queue.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				root := merkle.Root(tst.hashes)
				if !bytes.Equal(root, tst.exp) {
					t.Logf("\t%s\tTest %d:\tgot: %x", failed, testID, root)
					t.Logf("\t%s\tTest %d:\texp: %x", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould get back the right root.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the right root.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_OrderSensitive(t *testing.T) {
	a, b, c := leaf("a"), leaf("b"), leaf("c")

	t.Log("Given the need to detect reordered transactions.")
	{
		r1 := merkle.Root([][]byte{a, b, c})
		r2 := merkle.Root([][]byte{b, a, c})
		if bytes.Equal(r1, r2) {
			t.Fatalf("\t%s\tShould get a different root when the order changes.", failed)
		}
		t.Logf("\t%s\tShould get a different root when the order changes.", success)
	}
}

func Test_InputUntouched(t *testing.T) {
	a, b, c := leaf("a"), leaf("b"), leaf("c")
	hashes := [][]byte{a, b, c}

	t.Log("Given the need to reduce without changing the caller's hashes.")
	{
		merkle.Root(hashes)
		if !bytes.Equal(hashes[0], a) || !bytes.Equal(hashes[1], b) || !bytes.Equal(hashes[2], c) || len(hashes) != 3 {
			t.Fatalf("\t%s\tShould leave the input in place.", failed)
		}
		t.Logf("\t%s\tShould leave the input in place.", success)
	}
}
