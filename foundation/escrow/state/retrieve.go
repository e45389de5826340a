package state

import (
	"errors"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/genesis"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
	"github.com/ardanlabs/escrow/foundation/escrow/ledger"
	"github.com/holiman/uint256"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveParams returns the line parameters in use.
func (s *State) RetrieveParams() curve.Params {
	return s.params
}

// RetrieveEscrowAccount returns the account holding the locked asset.
func (s *State) RetrieveEscrowAccount() account.Account {
	return s.escrow
}

// RetrieveLastMoment returns the moment of the last applied transaction.
func (s *State) RetrieveLastMoment() curve.Moment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.last
}

// RetrieveNow returns the moment the next transaction would be applied at.
func (s *State) RetrieveNow() curve.Moment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.clock.Now()
}

// RetrieveLocks returns a copy of every locked balance.
func (s *State) RetrieveLocks() map[account.Account]ledger.LockedBalance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Copy()
}

// RetrieveTotalLocked returns the sum of every locked amount.
func (s *State) RetrieveTotalLocked() uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.TotalLocked()
}

// RetrieveHolders returns the number of participants holding a lock.
func (s *State) RetrieveHolders() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Holders()
}

// RetrieveAssetBalance returns the asset balance of the account.
func (s *State) RetrieveAssetBalance(a account.Account) uint256.Int {
	return s.assets.BalanceOf(a)
}

// RetrieveAllowance returns how much spender may still pull from owner.
func (s *State) RetrieveAllowance(owner, spender account.Account) uint256.Int {
	return s.assets.Allowance(owner, spender)
}

// RetrieveNonce returns the last nonce accepted for the account.
func (s *State) RetrieveNonce(a account.Account) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nonces[a]
}

// RetrieveBlocked returns the blocked accounts.
func (s *State) RetrieveBlocked() []account.Account {
	return s.blocks.Copy()
}

// IsBlocked reports whether the account is blocked.
func (s *State) IsBlocked(a account.Account) bool {
	return s.blocks.IsBlocked(a)
}

// RetrieveAdmin returns the account holding the administrative role.
func (s *State) RetrieveAdmin() account.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.admin
}

// RetrievePenaltyRecipient returns where collected penalties are sent.
func (s *State) RetrievePenaltyRecipient() account.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recipient
}

// RetrievePenaltyAccumulated returns the uncollected penalty pool.
func (s *State) RetrievePenaltyAccumulated() uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.penalty
}

// RetrieveMaxPenalty returns the penalty ratio for a full length quit,
// zero once the escrow was unlocked.
func (s *State) RetrieveMaxPenalty() uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maxPenalty
}

// RetrieveEntries returns the journal entries applied between the two
// sequence numbers, inclusive.
func (s *State) RetrieveEntries(from uint64, to uint64) ([]journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []journal.Entry
	iter := s.journal.ForEach()
	for {
		entry, err := iter.Next()
		if errors.Is(err, journal.ErrEndOfJournal) {
			break
		}
		if err != nil {
			return nil, err
		}

		if entry.Sequence >= from && entry.Sequence <= to {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
