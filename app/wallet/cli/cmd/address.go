package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var name string

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Publish the address for the specific wallet",
	Run:   addressRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
	addressCmd.Flags().StringVarP(&name, "name", "n", "", "Name for the address, defaults to the account name.")
}

func addressRun(cmd *cobra.Command, args []string) {
	if name == "" {
		name = getName()
	}

	addr, _, err := loadAddress(name)
	if err != nil {
		log.Fatal(err)
	}

	if err := publish("v1/address", addr); err != nil {
		log.Fatal(err)
	}

	fmt.Println(addr)
}
