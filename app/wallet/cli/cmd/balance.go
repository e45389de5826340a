package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

type info struct {
	Account   string `json:"account"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
	Allowance string `json:"allowance"`
	Nonce     uint64 `json:"nonce"`
	Blocked   bool   `json:"blocked"`
}

type weight struct {
	Balance  string `json:"balance"`
	Sequence uint64 `json:"sequence"`
}

type locked struct {
	Amount    string `json:"amount"`
	End       uint64 `json:"end"`
	Delegatee string `json:"delegatee"`
	Delegated string `json:"delegated"`
	Penalty   string `json:"penalty"`
}

var seq uint64

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your asset balance, lock and voting weight.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().Uint64VarP(&seq, "seq", "s", 0, "Past sequence to read the voting weight at.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	a := account.PublicKeyToAccount(privateKey.PublicKey)
	fmt.Println("For Account:", a)

	var inf info
	if err := get(fmt.Sprintf("%s/v1/accounts/%s", url, a), &inf); err != nil {
		log.Fatal(err)
	}

	var lck locked
	if err := get(fmt.Sprintf("%s/v1/escrow/locked/%s", url, a), &lck); err != nil {
		log.Fatal(err)
	}

	path := fmt.Sprintf("%s/v1/escrow/balance/%s", url, a)
	if seq != 0 {
		path = fmt.Sprintf("%s?seq=%d", path, seq)
	}

	var w weight
	if err := get(path, &w); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Asset:    ", inf.Balance)
	fmt.Println("Allowance:", inf.Allowance)
	fmt.Println("Nonce:    ", inf.Nonce)
	fmt.Println("Locked:   ", lck.Amount, "until", lck.End)
	if lck.Delegatee != "" {
		fmt.Println("Delegated:", lck.Delegatee)
	}
	fmt.Println("Penalty:  ", lck.Penalty)
	fmt.Println("Weight:   ", w.Balance, "at", w.Sequence)
}

// get decodes the response of a node query.
func get(path string, v any) error {
	resp, err := http.Get(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&er)
		return fmt.Errorf("%s: %s: %s", path, resp.Status, er.Error)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
