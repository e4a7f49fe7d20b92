// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/storage/disk"
)

// Storage is the block store the commands read from.
type Storage = ledger.Storage

// OpenStorage opens a persistent block store.
func OpenStorage(kind string, path string) (Storage, error) {
	switch kind {
	case "disk":
		return disk.New(path)
	case "bolt":
		return bolt.New(path)
	}

	return nil, fmt.Errorf("unknown storage kind %q", kind)
}

// Blocks writes a line for every stored block and its transactions.
func Blocks(w io.Writer, store Storage) error {
	blocks, err := store.ReadAll()
	if err != nil {
		return err
	}

	for i, block := range blocks {
		fmt.Fprintf(w, "Number: %d  Hash: %s  Prev: %s  Nonce: %d  Trans: %d\n",
			i+1, signature.Hex(block.Hash), signature.Hex(block.PreviousHash), block.Nonce, len(block.Transactions))

		for _, tx := range block.Transactions {
			fmt.Fprintf(w, "\tTx: %s  Sender: %s  Payload: %q\n",
				signature.Hex(tx.Hash), signature.Hex(tx.SenderHash), tx.Payload)
		}
	}

	return nil
}

// Verify replays the stored chain through block validation and returns the
// number of blocks that passed.
func Verify(store Storage, difficulty int, maxTrans int, ev func(v string, args ...any)) (int, error) {
	blocks, err := store.ReadAll()
	if err != nil {
		return 0, err
	}

	var prevHash []byte
	for i, block := range blocks {
		if err := block.ValidateBlock(prevHash, difficulty, maxTrans, nil, ev); err != nil {
			return i, fmt.Errorf("block %d: %w", i+1, err)
		}
		prevHash = block.Hash
	}

	return len(blocks), nil
}
