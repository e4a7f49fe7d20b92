package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/merkle"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
)

// Set of errors returned by ValidateBlock, one for each rule in the order
// the rules are checked.
var (
	ErrChainLinkage = errors.New("previous hash does not link to the chain")
	ErrMerkleRoot   = errors.New("merkle root does not match transactions")
	ErrBlockHash    = errors.New("block hash does not match content")
	ErrBlockSize    = errors.New("too many transactions in block")
	ErrNotInPool    = errors.New("transaction is not in the mempool")
	ErrDifficulty   = errors.New("block hash does not meet difficulty")
)

// Pool represents the behavior required to check the transactions of a
// block are pending on this node.
type Pool interface {
	ContainsAll(trans []Transaction) bool
}

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	Hash         []byte        `json:"hash"`         // SHA-256 of previous hash, nonce and timestamp.
	PreviousHash []byte        `json:"previousHash"` // Empty for the genesis block.
	Transactions []Transaction `json:"transactions"` // Ordered set of transactions.
	MerkleRoot   []byte        `json:"merkleRoot"`   // Queue reduction of the transaction hashes.
	Nonce        uint64        `json:"nonce"`        // Value identified to solve the hash solution.
	TimeStamp    int64         `json:"timestamp"`    // Time the block was mined in milliseconds.
}

// NewBlock constructs a block and calculates the merkle root and hash.
func NewBlock(prevHash []byte, trans []Transaction, nonce uint64, timeStamp int64) Block {
	b := Block{
		PreviousHash: prevHash,
		Transactions: trans,
		Nonce:        nonce,
		TimeStamp:    timeStamp,
	}
	b.MerkleRoot = b.CalculateMerkleRoot()
	b.Hash = b.CalculateHash()

	return b
}

// CalculateHash returns the hash of the block header fields. The transactions
// are committed to through the merkle root which is checked separately.
func (b Block) CalculateHash() []byte {
	return signature.Digest(b.PreviousHash, be64(b.Nonce), be64(uint64(b.TimeStamp)))
}

// CalculateMerkleRoot returns the merkle root for the block transactions
// in block order.
func (b Block) CalculateMerkleRoot() []byte {
	hashes := make([][]byte, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.Hash
	}

	return merkle.Root(hashes)
}

// LeadingZeros returns the number of leading zero bytes in the block hash.
func (b Block) LeadingZeros() int {
	return leadingZeros(b.Hash)
}

// IsGenesis reports whether this block starts a chain.
func (b Block) IsGenesis() bool {
	return len(b.PreviousHash) == 0
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%s:trans[%d]", shortHex(b.Hash), len(b.Transactions))
}

// ValidateBlock takes a block and validates it to be appended after the block
// with the specified hash. A nil pool skips the pool membership check which is
// used when importing blocks another node already accepted.
func (b Block) ValidateBlock(prevHash []byte, difficulty int, maxTrans int, pool Pool, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%s]: check: previous hash links to the chain", b)

	// A chain without blocks only accepts a genesis block.
	linked := bytes.Equal(b.PreviousHash, prevHash)
	if len(prevHash) == 0 {
		linked = b.IsGenesis()
	}
	if !linked {
		return fmt.Errorf("%w: got %s, exp %s", ErrChainLinkage, signature.Hex(b.PreviousHash), signature.Hex(prevHash))
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: merkle root does match transactions", b)

	if root := b.CalculateMerkleRoot(); !bytes.Equal(b.MerkleRoot, root) {
		return fmt.Errorf("%w: got %s, exp %s", ErrMerkleRoot, signature.Hex(b.MerkleRoot), signature.Hex(root))
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: block hash does match content", b)

	if hash := b.CalculateHash(); !bytes.Equal(b.Hash, hash) {
		return fmt.Errorf("%w: got %s, exp %s", ErrBlockHash, signature.Hex(b.Hash), signature.Hex(hash))
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: block size is within limits", b)

	if len(b.Transactions) > maxTrans {
		return fmt.Errorf("%w: got %d, max %d", ErrBlockSize, len(b.Transactions), maxTrans)
	}

	if pool != nil {
		evHandler("database: ValidateBlock: validate: blk[%s]: check: transactions are pending in mempool", b)

		if !pool.ContainsAll(b.Transactions) {
			return ErrNotInPool
		}
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: block hash has been solved", b)

	if zeros := b.LeadingZeros(); zeros < difficulty {
		return fmt.Errorf("%w: got %d zero bytes, exp %d", ErrDifficulty, zeros, difficulty)
	}

	return nil
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevHash   []byte
	Trans      []Transaction
	Difficulty int
	TimeStamp  int64
	EvHandler  func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle. The timestamp is held constant for
// the whole search.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	nb := NewBlock(args.PrevHash, args.Trans, 0, args.TimeStamp)

	if err := nb.performPOW(ctx, args.Difficulty, args.EvHandler); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, difficulty int, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started")
	defer ev("database: PerformPOW: MINING: completed")

	for _, tx := range b.Transactions {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		// Did we get told to stop trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		b.Hash = b.CalculateHash()
		if leadingZeros(b.Hash) < difficulty {
			b.Nonce++
			continue
		}

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", shortHex(b.PreviousHash), shortHex(b.Hash))
		ev("database: PerformPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// leadingZeros counts the zero value bytes at the front of the hash.
func leadingZeros(hash []byte) int {
	for i, b := range hash {
		if b != 0 {
			return i
		}
	}

	return len(hash)
}
