package bolt_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/storage/bolt"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_ReadWrite(t *testing.T) {
	strg, err := bolt.New(filepath.Join(t.TempDir(), "blocks.db"))
	if err != nil {
		t.Fatalf("Should be able to open the storage: %s", err)
	}
	defer strg.Close()

	genesis := database.NewBlock(nil, nil, 7, 1000)
	next := database.NewBlock(genesis.Hash, nil, 8, 2000)

	t.Log("Given the need to store accepted blocks.")
	{
		if err := strg.Write(1, genesis); err != nil {
			t.Fatalf("\t%s\tShould be able to write the first block: %s", failed, err)
		}
		if err := strg.Write(2, next); err != nil {
			t.Fatalf("\t%s\tShould be able to write the second block: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to write blocks.", success)

		if err := strg.Write(2, next); err == nil {
			t.Fatalf("\t%s\tShould not be able to write a block number twice.", failed)
		}
		t.Logf("\t%s\tShould not be able to write a block number twice.", success)

		blocks, err := strg.ReadAll()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the blocks: %s", failed, err)
		}
		if len(blocks) != 2 {
			t.Fatalf("\t%s\tShould get back 2 blocks, got %d.", failed, len(blocks))
		}
		t.Logf("\t%s\tShould get back 2 blocks.", success)

		if !bytes.Equal(blocks[0].Hash, genesis.Hash) || !bytes.Equal(blocks[1].PreviousHash, genesis.Hash) {
			t.Fatalf("\t%s\tShould get the blocks back in chain order.", failed)
		}
		t.Logf("\t%s\tShould get the blocks back in chain order.", success)

		if blocks[1].Nonce != 8 || blocks[1].TimeStamp != 2000 {
			t.Fatalf("\t%s\tShould keep every block field.", failed)
		}
		t.Logf("\t%s\tShould keep every block field.", success)
	}
}
