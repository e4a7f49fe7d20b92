// Package cmd contains the wallet commands.
package cmd

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	nodeURL     string
)

const keyExtension = ".ecdsa"

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Name of the private key file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage keys and publish to a gossipchain node",
}

// Execute runs the wallet commands.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	if !strings.HasSuffix(accountName, keyExtension) {
		accountName += keyExtension
	}

	return filepath.Join(accountPath, accountName)
}

// getName returns the account name without the key extension.
func getName() string {
	return strings.TrimSuffix(filepath.Base(accountName), keyExtension)
}

// loadAddress reads the private key file and builds the address it signs for.
func loadAddress(name string) (database.Address, []byte, error) {
	pk, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return database.Address{}, nil, err
	}

	privateKey := crypto.FromECDSA(pk)

	publicKey, err := signature.PublicKey(privateKey)
	if err != nil {
		return database.Address{}, nil, err
	}

	return database.NewAddress(name, publicKey), privateKey, nil
}

// publish sends the value to the node and asks it to share it with its peers.
func publish(endpoint string, v any) error {
	node, err := peer.New(nodeURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := peer.NewClient(10*time.Second, 1, nil)
	return client.Send(ctx, http.MethodPut, node.URL(endpoint)+"?publish=true", v, nil)
}
