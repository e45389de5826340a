package state

import (
	"fmt"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
)

// SubmitTransaction verifies the signed transaction and applies it on
// behalf of the account that signed it. The nonce must be larger than the
// last one accepted for that account.
func (s *State) SubmitTransaction(signedTx journal.SignedTx) (account.Account, error) {
	from, err := signedTx.Validate(s.genesis.ChainID)
	if err != nil {
		return "", fmt.Errorf("invalid transaction: %w", err)
	}

	if err := s.execute(from, signedTx.Tx, true); err != nil {
		return from, err
	}

	return from, nil
}
