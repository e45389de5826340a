package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/state"
)

// Journal prints the applied transactions, optionally only those sent by
// the account given.
func Journal(args []string, st *state.State) error {
	var onlyAct string
	if len(args) == 3 {
		onlyAct = args[2]
	}

	return journal(os.Stdout, onlyAct, st)
}

func journal(w io.Writer, onlyAct string, st *state.State) error {
	var only account.Account
	if onlyAct != "" {
		a, err := account.ToAccount(onlyAct)
		if err != nil {
			return err
		}
		only = a
	}

	entries, err := st.RetrieveEntries(0, st.RetrieveLastMoment().Sequence)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if only != "" && e.From != only {
			continue
		}
		fmt.Fprintf(w, "Seq: %d  Time: %d  From: %s  Op: %s  Nonce: %d  Account: %s  Amount: %s  End: %d\n",
			e.Sequence, e.Timestamp, e.From, e.Tx.Op, e.Tx.Nonce, e.Tx.Account, e.Tx.Amount, e.Tx.End)
	}

	return nil
}

// Supply prints the total voting weight now, or at the past sequence given.
func Supply(args []string, st *state.State) error {
	if len(args) < 3 {
		supply := st.TotalSupply()
		fmt.Printf("Supply: %s  Locked: %s\n", supply.Dec(), lockedDec(st))
		return nil
	}

	seq, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		return err
	}

	supply, err := st.TotalSupplyAt(seq)
	if err != nil {
		return err
	}
	fmt.Printf("Supply: %s  Sequence: %d\n", supply.Dec(), seq)

	return nil
}

func lockedDec(st *state.State) string {
	locked := st.RetrieveTotalLocked()
	return locked.Dec()
}
