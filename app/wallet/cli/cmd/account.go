package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the address hash for the specific wallet",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	addr, _, err := loadAddress(getName())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(signature.Hex(addr.Hash))
}
