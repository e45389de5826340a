package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount string
	end    uint64
	weeks  uint64
)

// flags names the inputs an operation reads.
type flags struct {
	to     bool
	amount bool
	end    bool
}

var operations = []struct {
	use   string
	short string
	op    string
	flags flags
}{
	{"approve", "Allow the escrow or another account to pull your asset", journal.OpApprove, flags{to: true, amount: true}},
	{"transfer", "Send asset to another account", journal.OpTransfer, flags{to: true, amount: true}},
	{"lock", "Lock asset until the end", journal.OpCreateLock, flags{amount: true, end: true}},
	{"increase", "Add asset to your lock", journal.OpIncreaseAmount, flags{amount: true}},
	{"extend", "Move the end of your lock later", journal.OpIncreaseUnlock, flags{end: true}},
	{"withdraw", "Take back an expired lock", journal.OpWithdraw, flags{}},
	{"quit", "Leave your lock early and pay the penalty", journal.OpQuitLock, flags{}},
	{"delegate", "Delegate your voting weight, to yourself to undelegate", journal.OpDelegate, flags{to: true}},
	{"checkpoint", "Record the global history up to now", journal.OpCheckpoint, flags{}},
	{"collect", "Send the accumulated penalties to the recipient", journal.OpCollectPenalty, flags{}},
	{"unlock", "Lift the early quit penalty for everyone", journal.OpUnlock, flags{}},
	{"block", "Block an account from locking or delegating", journal.OpBlock, flags{to: true}},
	{"unblock", "Unblock an account", journal.OpUnblock, flags{to: true}},
	{"recipient", "Change the penalty recipient", journal.OpSetRecipient, flags{to: true}},
	{"owner", "Transfer the escrow administration", journal.OpTransferOwner, flags{to: true}},
}

func init() {
	for _, o := range operations {
		o := o
		c := &cobra.Command{
			Use:   o.use,
			Short: o.short,
			Run: func(cmd *cobra.Command, args []string) {
				privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
				if err != nil {
					log.Fatal(err)
				}

				tx, err := newTx(o.op, o.flags)
				if err != nil {
					log.Fatal(err)
				}

				sendWithDetails(privateKey, tx)
			},
		}

		if o.flags.to {
			c.Flags().StringVarP(&to, "to", "t", "", "Counterparty account.")
		}
		if o.flags.amount {
			c.Flags().StringVarP(&amount, "amount", "v", "", "Amount in base units.")
		}
		if o.flags.end {
			c.Flags().Uint64VarP(&end, "end", "e", 0, "Lock end as a unix timestamp.")
			c.Flags().Uint64VarP(&weeks, "weeks", "w", 0, "Lock end in weeks from now, used when end is not set.")
		}

		rootCmd.AddCommand(c)
	}
}

func newTx(op string, f flags) (journal.Tx, error) {
	tx := journal.Tx{Op: op}

	if f.to {
		a, err := account.ToAccount(to)
		if err != nil {
			return journal.Tx{}, fmt.Errorf("to: %w", err)
		}
		tx.Account = a
	}

	if f.amount {
		v, err := uint256.FromDecimal(amount)
		if err != nil {
			return journal.Tx{}, fmt.Errorf("amount %q: %w", amount, err)
		}
		tx.Amount = v.Dec()
	}

	if f.end {
		tx.End = end
		if tx.End == 0 {
			tx.End = uint64(time.Now().Unix()) + weeks*curve.Week
		}
	}

	return tx, nil
}

// sendWithDetails fills in the chain id and next nonce, signs the
// transaction and submits it to the node.
func sendWithDetails(privateKey *ecdsa.PrivateKey, tx journal.Tx) {
	from := account.PublicKeyToAccount(privateKey.PublicKey)

	var gen struct {
		ChainID uint16 `json:"chain_id"`
	}
	if err := get(fmt.Sprintf("%s/v1/genesis/list", url), &gen); err != nil {
		log.Fatal(err)
	}

	var inf info
	if err := get(fmt.Sprintf("%s/v1/accounts/%s", url, from), &inf); err != nil {
		log.Fatal(err)
	}

	tx.ChainID = gen.ChainID
	tx.Nonce = inf.Nonce + 1

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		log.Fatal(err)
	}

	data, err := json.Marshal(signedTx)
	if err != nil {
		log.Fatal(err)
	}

	path := fmt.Sprintf("%s/v1/tx/submit", url)
	if tx.IsAdmin() {
		path = fmt.Sprintf("%s/v1/node/tx/submit", privateURL)
	}

	resp, err := http.Post(path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("%s: %s", resp.Status, body)
	}
	fmt.Println(string(body))
}
