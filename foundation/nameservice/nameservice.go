// Package nameservice reads a folder of private key files and creates a
// name service lookup for the addresses they sign for.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of address hashes for name lookup.
type NameService struct {
	addresses map[string]database.Address
}

// New constructs a name service with an address for every .ecdsa file found
// under root. The file name without the extension is the address name.
func New(root string) (*NameService, error) {
	ns := NameService{
		addresses: make(map[string]database.Address),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return err
		}

		publicKey, err := signature.PublicKey(crypto.FromECDSA(privateKey))
		if err != nil {
			return err
		}

		addr := database.NewAddress(strings.TrimSuffix(path.Base(fileName), ".ecdsa"), publicKey)
		ns.addresses[addr.Key()] = addr

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address hash.
func (ns *NameService) Lookup(hash []byte) string {
	addr, exists := ns.addresses[signature.Hex(hash)]
	if !exists {
		return signature.Hex(hash)
	}
	return addr.Name
}

// Addresses returns the addresses sorted by name.
func (ns *NameService) Addresses() []database.Address {
	addrs := make([]database.Address, 0, len(ns.addresses))
	for _, addr := range ns.addresses {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Name < addrs[j].Name
	})

	return addrs
}
