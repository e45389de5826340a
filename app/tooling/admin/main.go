// This program inspects an escrow journal offline by replaying it over the
// genesis it was recorded against.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/escrow/app/tooling/admin/commands"
	"github.com/ardanlabs/escrow/foundation/escrow/genesis"
	"github.com/ardanlabs/escrow/foundation/escrow/journal/disk"
	"github.com/ardanlabs/escrow/foundation/escrow/state"
	"github.com/ardanlabs/escrow/foundation/logger"
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
	if len(os.Args) < 2 {
		return errors.New("usage: admin bals|journal|supply [account]")
	}

	log.Infow("startup", "build", build)

	gen, err := genesis.Load("zescrow/genesis.json")
	if err != nil {
		return err
	}

	jrn, err := disk.New("zescrow/journal.db")
	if err != nil {
		return err
	}

	st, err := state.New(state.Config{
		Genesis:    gen,
		Serializer: jrn,
		EvHandler: func(v string, args ...any) {
			log.Debugf(v, args...)
		},
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	return processCommands(os.Args, st)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, st *state.State) error {
	switch args[1] {
	case "bals":
		if err := commands.Balances(args, st); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "journal":
		if err := commands.Journal(args, st); err != nil {
			return fmt.Errorf("getting journal: %w", err)
		}
	case "supply":
		if err := commands.Supply(args, st); err != nil {
			return fmt.Errorf("getting supply: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
