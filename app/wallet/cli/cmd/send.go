package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var message string

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a message and publish it as a transaction",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&message, "message", "m", "", "Message to sign.")
	sendCmd.Flags().StringVarP(&name, "name", "n", "", "Name of the sending address, defaults to the account name.")
}

func sendRun(cmd *cobra.Command, args []string) {
	if name == "" {
		name = getName()
	}

	addr, privateKey, err := loadAddress(name)
	if err != nil {
		log.Fatal(err)
	}

	tx, err := database.SignTransaction([]byte(message), addr, privateKey, time.Now().UTC().UnixMilli())
	if err != nil {
		log.Fatal(err)
	}

	if err := publish("v1/transaction", tx); err != nil {
		log.Fatal(err)
	}

	fmt.Println(tx)
}
