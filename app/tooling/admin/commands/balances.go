package commands

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/state"
)

// Balances prints the locks and voting weight of every holder, or only
// of the account given.
func Balances(args []string, st *state.State) error {
	var onlyAct string
	if len(args) == 3 {
		onlyAct = args[2]
	}

	return balances(os.Stdout, onlyAct, st)
}

func balances(w io.Writer, onlyAct string, st *state.State) error {
	var only account.Account
	if onlyAct != "" {
		a, err := account.ToAccount(onlyAct)
		if err != nil {
			return err
		}
		only = a
	}

	now := st.RetrieveNow()
	fmt.Fprintf(w, "Sequence: %d  Timestamp: %d\n\n", now.Sequence, now.Timestamp)

	locks := st.RetrieveLocks()
	accounts := make([]account.Account, 0, len(locks))
	for a := range locks {
		if only != "" && a != only {
			continue
		}
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })

	for _, a := range accounts {
		lb := locks[a]
		weight := st.BalanceOf(a)
		fmt.Fprintf(w, "Account: %s  Locked: %s  End: %d  Delegatee: %s  Weight: %s\n",
			a, lb.Amount.Dec(), lb.End, lb.Delegatee, weight.Dec())
	}

	return nil
}
