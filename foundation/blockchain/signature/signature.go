// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Set of errors returned by the signing and verification functions.
var (
	ErrSigning      = errors.New("signing failed")
	ErrVerification = errors.New("verification failed")
)

// gossipStamp is prepended to every message before it is signed. This will
// make it clear that the signature comes from the gossipchain network.
// Ethereum and Bitcoin do this as well.
const gossipStamp = "\x19Gossipchain Signed Message:\n32"

// =============================================================================

// Digest returns the SHA-256 hash over the concatenation of all the
// specified byte slices in argument order.
func Digest(chunks ...[]byte) []byte {
	h := sha256.New()
	for _, chunk := range chunks {
		h.Write(chunk)
	}

	return h.Sum(nil)
}

// Hex returns the 0x prefixed hex representation of the bytes.
func Hex(b []byte) string {
	if len(b) == 0 {
		return "0x"
	}

	return hexutil.Encode(b)
}

// GenerateKeyPair generates a new secp256k1 key pair using a cryptographically
// secure random source. The private key is the raw 32 byte scalar and the
// public key is the 65 byte uncompressed point.
func GenerateKeyPair() (privateKey []byte, publicKey []byte, err error) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("generate key: %w", err)
	}

	return crypto.FromECDSA(pk), crypto.FromECDSAPub(&pk.PublicKey), nil
}

// PublicKey returns the public key bytes for the specified private key bytes.
func PublicKey(privateKey []byte) ([]byte, error) {
	pk, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding private key: %w", ErrSigning, err)
	}

	return crypto.FromECDSAPub(&pk.PublicKey), nil
}

// Sign uses the specified private key to sign the data. The signature is
// returned in the 65 byte [R|S|V] format.
func Sign(data []byte, privateKey []byte) ([]byte, error) {
	pk, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding private key: %w", ErrSigning, err)
	}

	sig, err := crypto.Sign(stamp(data), pk)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}

	return sig, nil
}

// Verify checks the signature was produced by the owner of the public key
// for the specified data. Any failure to decode the key or the signature is
// reported as a verification failure.
func Verify(data []byte, sig []byte, publicKey []byte) error {
	pub, err := crypto.UnmarshalPubkey(publicKey)
	if err != nil {
		return fmt.Errorf("%w: decoding public key: %w", ErrVerification, err)
	}

	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature length %d, exp %d", ErrVerification, len(sig), crypto.SignatureLength)
	}

	// Check the recovery id is either 0 or 1.
	if sig[crypto.RecoveryIDOffset] > 1 {
		return fmt.Errorf("%w: invalid recovery id", ErrVerification)
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(pub), stamp(data), rs) {
		return fmt.Errorf("%w: signature does not match", ErrVerification)
	}

	return nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the gossipchain stamp embedded into the final hash.
func stamp(data []byte) []byte {

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data.
	dataHash := crypto.Keccak256(data)

	// Hash the stamp and dataHash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256([]byte(gossipStamp), dataHash)
}
