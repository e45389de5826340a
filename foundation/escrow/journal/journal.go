// Package journal defines the transactions accepted by the escrow and the
// append-only record of the ones that were applied.
package journal

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/signature"
)

// Set of operations a transaction can carry.
const (
	OpApprove        = "approve"
	OpTransfer       = "transfer"
	OpCreateLock     = "create_lock"
	OpIncreaseAmount = "increase_amount"
	OpIncreaseUnlock = "increase_unlock_time"
	OpWithdraw       = "withdraw"
	OpQuitLock       = "quit_lock"
	OpDelegate       = "delegate"
	OpCheckpoint     = "checkpoint"
	OpCollectPenalty = "collect_penalty"
	OpUnlock         = "unlock"
	OpBlock          = "block"
	OpUnblock        = "unblock"
	OpSetRecipient   = "set_penalty_recipient"
	OpTransferOwner  = "transfer_ownership"
)

var ops = map[string]bool{
	OpApprove: true, OpTransfer: true, OpCreateLock: true, OpIncreaseAmount: true,
	OpIncreaseUnlock: true, OpWithdraw: true, OpQuitLock: true, OpDelegate: true,
	OpCheckpoint: true, OpCollectPenalty: true, OpUnlock: true, OpBlock: true,
	OpUnblock: true, OpSetRecipient: true, OpTransferOwner: true,
}

// ErrEndOfJournal is returned by an iterator with no more entries.
var ErrEndOfJournal = errors.New("end of journal")

// =============================================================================

// Tx is the operation a participant asks the escrow to perform.
type Tx struct {
	ChainID uint16          `json:"chain_id"`          // Chain the transaction is meant for.
	Nonce   uint64          `json:"nonce"`             // Must be larger than the last nonce accepted for the sender.
	Op      string          `json:"op"`                // One of the Op constants.
	Amount  string          `json:"amount,omitempty"`  // Decimal amount in base units.
	End     uint64          `json:"end,omitempty"`     // Requested lock end as a unix timestamp.
	Account account.Account `json:"account,omitempty"` // Counterparty: spender, receiver, delegatee or admin target.
}

// Validate checks the transaction is well formed.
func (tx Tx) Validate() error {
	if !ops[tx.Op] {
		return fmt.Errorf("unknown operation %q", tx.Op)
	}
	if tx.Account != "" && !tx.Account.IsAccount() {
		return fmt.Errorf("account %q: %w", tx.Account, account.ErrInvalid)
	}
	return nil
}

// IsAdmin reports whether only the escrow admin may apply the transaction.
func (tx Tx) IsAdmin() bool {
	switch tx.Op {
	case OpCollectPenalty, OpUnlock, OpBlock, OpUnblock, OpSetRecipient, OpTransferOwner:
		return true
	}
	return false
}

// Sign uses the specified private key to sign the transaction.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {
	if err := tx.Validate(); err != nil {
		return SignedTx{}, err
	}

	v, r, s, err := signature.Sign(tx, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	signedTx := SignedTx{
		Tx: tx,
		V:  v,
		R:  r,
		S:  s,
	}

	return signedTx, nil
}

// =============================================================================

// SignedTx is a signed version of the transaction.
type SignedTx struct {
	Tx
	V *big.Int `json:"v"` // Recovery identifier with the escrow offset.
	R *big.Int `json:"r"` // First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Second coordinate of the ECDSA signature.
}

// Validate checks the transaction is well formed and the signature is
// valid. The recovered sender is returned.
func (tx SignedTx) Validate(chainID uint16) (account.Account, error) {
	if tx.ChainID != chainID {
		return "", fmt.Errorf("invalid chain id, got[%d] exp[%d]", tx.ChainID, chainID)
	}

	if err := tx.Tx.Validate(); err != nil {
		return "", err
	}

	return signature.FromAccount(tx.Tx, tx.V, tx.R, tx.S)
}

// SignatureString returns the signature as a string.
func (tx SignedTx) SignatureString() string {
	return signature.String(tx.V, tx.R, tx.S)
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	from, err := signature.FromAccount(tx.Tx, tx.V, tx.R, tx.S)
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%d:%s", from, tx.Nonce, tx.Op)
}

// =============================================================================

// Entry is a transaction applied to the escrow together with the moment it
// was applied at. Replaying entries in order rebuilds the escrow.
type Entry struct {
	Sequence  uint64          `json:"sequence"`
	Timestamp uint64          `json:"timestamp"`
	From      account.Account `json:"from"`
	Tx        Tx              `json:"tx"`
}

// NewEntry constructs an entry for a transaction applied at the moment.
func NewEntry(at curve.Moment, from account.Account, tx Tx) Entry {
	return Entry{
		Sequence:  at.Sequence,
		Timestamp: at.Timestamp,
		From:      from,
		Tx:        tx,
	}
}

// Moment returns when the entry was applied.
func (e Entry) Moment() curve.Moment {
	return curve.Moment{Timestamp: e.Timestamp, Sequence: e.Sequence}
}

// =============================================================================

// Serializer interface represents the behavior required to be implemented by
// any package providing support for storing and reading the journal.
type Serializer interface {
	Write(entry Entry) error
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the entries. Next returns
// ErrEndOfJournal once every entry was read.
type Iterator interface {
	Next() (Entry, error)
}
