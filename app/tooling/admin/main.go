// This program performs administrative tasks against a node's block store.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ardanlabs/gossipchain/app/tooling/admin/commands"
	"github.com/ardanlabs/gossipchain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	if len(os.Args) < 4 {
		return fmt.Errorf("usage: admin blocks|verify <disk|bolt> <path> [difficulty] [maxtrans]")
	}

	store, err := commands.OpenStorage(os.Args[2], os.Args[3])
	if err != nil {
		return err
	}
	defer store.Close()

	log.Infow("startup", "version", build, "command", os.Args[1], "kind", os.Args[2], "path", os.Args[3])

	return processCommands(os.Args, store, log)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, store commands.Storage, log *zap.SugaredLogger) error {
	switch args[1] {
	case "blocks":
		if err := commands.Blocks(os.Stdout, store); err != nil {
			return fmt.Errorf("listing blocks: %w", err)
		}

	case "verify":
		difficulty, maxTrans := 0, 1<<20
		if len(args) > 4 {
			v, err := strconv.Atoi(args[4])
			if err != nil {
				return fmt.Errorf("difficulty: %w", err)
			}
			difficulty = v
		}
		if len(args) > 5 {
			v, err := strconv.Atoi(args[5])
			if err != nil {
				return fmt.Errorf("maxtrans: %w", err)
			}
			maxTrans = v
		}

		ev := func(v string, a ...any) {
			log.Infow(fmt.Sprintf(v, a...))
		}

		height, err := commands.Verify(store, difficulty, maxTrans, ev)
		if err != nil {
			return fmt.Errorf("verifying chain: %w", err)
		}
		fmt.Printf("chain verified: height[%d]\n", height)

	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
