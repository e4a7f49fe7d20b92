// Package database defines the content addressed values that make up the
// blockchain: addresses, transactions and blocks, with the hashing and
// validation rules every node on the network applies the same way.
package database

import (
	"bytes"
	"errors"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
)

// ErrInvalidHash is returned when a stored hash doesn't match the value
// recalculated from the other fields.
var ErrInvalidHash = errors.New("hash does not match content")

// =============================================================================

// Address represents a named public key that is allowed to submit
// transactions to the network.
type Address struct {
	Hash      []byte `json:"hash"`      // SHA-256 of name and public key.
	Name      string `json:"name"`      // Human readable label for the key.
	PublicKey []byte `json:"publicKey"` // Uncompressed secp256k1 public key.
}

// NewAddress constructs an address and calculates its hash.
func NewAddress(name string, publicKey []byte) Address {
	addr := Address{
		Name:      name,
		PublicKey: publicKey,
	}
	addr.Hash = addr.CalculateHash()

	return addr
}

// CalculateHash returns the hash for the address based on the name
// and public key.
func (a Address) CalculateHash() []byte {
	return signature.Digest([]byte(a.Name), a.PublicKey)
}

// Validate checks the stored hash matches the name and public key.
func (a Address) Validate() error {
	if !bytes.Equal(a.Hash, a.CalculateHash()) {
		return ErrInvalidHash
	}

	return nil
}

// Equals reports whether the two addresses have the same identity.
func (a Address) Equals(other Address) bool {
	return bytes.Equal(a.Hash, other.Hash)
}

// Key returns the hex form of the hash for use as a map key.
func (a Address) Key() string {
	return signature.Hex(a.Hash)
}

// String implements the fmt.Stringer interface for logging.
func (a Address) String() string {
	return a.Name + ":" + shortHex(a.Hash)
}

// =============================================================================

// shortHex returns the first bytes of a hash for use in log lines.
func shortHex(b []byte) string {
	h := signature.Hex(b)
	if len(h) > 10 {
		return h[:10]
	}

	return h
}
