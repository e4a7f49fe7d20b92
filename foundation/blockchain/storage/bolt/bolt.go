// Package bolt implements the ability to read and write blocks to a single
// bolt database file keyed by block number.
package bolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

var blocksBucket = []byte("blocks")

// Bolt represents the serialization implementation for reading and storing
// blocks in a bolt database. This implements the ledger.Storage interface.
type Bolt struct {
	db *bolt.DB
}

// New opens or creates the bolt database at the specified path.
func New(dbPath string) (*Bolt, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Write stores the block under its number. A number that is already used
// is rejected.
func (b *Bolt) Write(number uint64, block database.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blocksBucket)

		key := blockKey(number)
		if bkt.Get(key) != nil {
			return fmt.Errorf("block %d already exists", number)
		}

		return bkt.Put(key, data)
	})
}

// ReadAll returns every stored block in chain order. The big endian keys
// make the cursor walk the blocks by number.
func (b *Bolt) ReadAll() ([]database.Block, error) {
	var blocks []database.Block

	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(blocksBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var block database.Block
			if err := json.Unmarshal(v, &block); err != nil {
				return fmt.Errorf("decoding block %d: %w", binary.BigEndian.Uint64(k), err)
			}
			blocks = append(blocks, block)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

func blockKey(number uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], number)
	return key[:]
}
