package main

import "github.com/ardanlabs/gossipchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
