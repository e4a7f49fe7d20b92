package database

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
)

// Transaction is a signed message submitted by a known address.
type Transaction struct {
	Hash       []byte `json:"hash"`       // SHA-256 of payload, sender, signature and timestamp.
	Payload    []byte `json:"payload"`    // The raw bytes that were signed.
	SenderHash []byte `json:"senderHash"` // Hash of the address that signed the payload.
	Signature  []byte `json:"signature"`  // Signature over the payload in the [R|S|V] format.
	TimeStamp  int64  `json:"timestamp"`  // Creation time in milliseconds.
}

// NewTransaction constructs a transaction from a payload that was already
// signed and calculates its hash.
func NewTransaction(payload []byte, senderHash []byte, sig []byte, timeStamp int64) Transaction {
	tx := Transaction{
		Payload:    payload,
		SenderHash: senderHash,
		Signature:  sig,
		TimeStamp:  timeStamp,
	}
	tx.Hash = tx.CalculateHash()

	return tx
}

// SignTransaction uses the private key that belongs to the sender to sign
// the payload and construct the transaction.
func SignTransaction(payload []byte, sender Address, privateKey []byte, timeStamp int64) (Transaction, error) {
	sig, err := signature.Sign(payload, privateKey)
	if err != nil {
		return Transaction{}, err
	}

	return NewTransaction(payload, sender.Hash, sig, timeStamp), nil
}

// CalculateHash returns the hash for the transaction based on its fields.
func (tx Transaction) CalculateHash() []byte {
	return signature.Digest(tx.Payload, tx.SenderHash, tx.Signature, be64(uint64(tx.TimeStamp)))
}

// VerifySignature checks the signature was produced by the owner of
// the public key.
func (tx Transaction) VerifySignature(publicKey []byte) error {
	return signature.Verify(tx.Payload, tx.Signature, publicKey)
}

// Validate checks the stored hash matches the transaction fields.
func (tx Transaction) Validate() error {
	if !bytes.Equal(tx.Hash, tx.CalculateHash()) {
		return fmt.Errorf("transaction %s: %w", tx, ErrInvalidHash)
	}

	return nil
}

// Key returns the hex form of the hash for use as a map key.
func (tx Transaction) Key() string {
	return signature.Hex(tx.Hash)
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	return fmt.Sprintf("%s:%s", shortHex(tx.SenderHash), shortHex(tx.Hash))
}

// =============================================================================

// be64 returns the 8 byte big endian form of the value.
func be64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}
