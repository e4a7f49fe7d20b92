package commands_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/gossipchain/app/tooling/admin/commands"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func noop(v string, args ...any) {}

func Test_Verify(t *testing.T) {
	store, err := commands.OpenStorage("disk", t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to open the store: %s", err)
	}
	defer store.Close()

	var prevHash []byte
	for i := 0; i < 2; i++ {
		block, err := database.POW(context.Background(), database.POWArgs{
			PrevHash:  prevHash,
			TimeStamp: int64(i + 1),
			EvHandler: noop,
		})
		if err != nil {
			t.Fatalf("Should be able to mine a block: %s", err)
		}
		if err := store.Write(uint64(i+1), block); err != nil {
			t.Fatalf("Should be able to write the block: %s", err)
		}
		prevHash = block.Hash
	}

	t.Log("Given the need to inspect a stored chain.")
	{
		var buf bytes.Buffer
		if err := commands.Blocks(&buf, store); err != nil {
			t.Fatalf("\t%s\tShould be able to list the blocks: %s", failed, err)
		}
		if !strings.Contains(buf.String(), "Number: 2") {
			t.Fatalf("\t%s\tShould list both blocks: %s", failed, buf.String())
		}
		t.Logf("\t%s\tShould list both blocks.", success)

		height, err := commands.Verify(store, 0, 5, noop)
		if err != nil || height != 2 {
			t.Fatalf("\t%s\tShould verify the chain: %d %v", failed, height, err)
		}
		t.Logf("\t%s\tShould verify the chain.", success)

		orphan, err := database.POW(context.Background(), database.POWArgs{
			PrevHash:  []byte("unknown"),
			TimeStamp: 3,
			EvHandler: noop,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %s", failed, err)
		}
		if err := store.Write(3, orphan); err != nil {
			t.Fatalf("\t%s\tShould be able to write the block: %s", failed, err)
		}

		height, err = commands.Verify(store, 0, 5, noop)
		if !errors.Is(err, database.ErrChainLinkage) || height != 2 {
			t.Fatalf("\t%s\tShould stop at the broken link: %d %v", failed, height, err)
		}
		t.Logf("\t%s\tShould stop at the broken link.", success)
	}

	t.Log("Given the need to reject unknown stores.")
	{
		if _, err := commands.OpenStorage("memory", ""); err == nil {
			t.Fatalf("\t%s\tShould reject a store with nothing to inspect.", failed)
		}
		t.Logf("\t%s\tShould reject a store with nothing to inspect.", success)
	}
}
