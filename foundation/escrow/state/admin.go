package state

import (
	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
)

// Block adds the target to the blocklist and reverses every delegation it
// gives or receives.
func (s *State) Block(from account.Account, target account.Account) error {
	return s.execute(from, journal.Tx{Op: journal.OpBlock, Account: target}, false)
}

// Unblock removes the target from the blocklist.
func (s *State) Unblock(from account.Account, target account.Account) error {
	return s.execute(from, journal.Tx{Op: journal.OpUnblock, Account: target}, false)
}

// SetPenaltyRecipient changes where collected penalties are sent.
func (s *State) SetPenaltyRecipient(from account.Account, recipient account.Account) error {
	return s.execute(from, journal.Tx{Op: journal.OpSetRecipient, Account: recipient}, false)
}

// TransferOwnership hands the administrative role to another account.
func (s *State) TransferOwnership(from account.Account, admin account.Account) error {
	return s.execute(from, journal.Tx{Op: journal.OpTransferOwner, Account: admin}, false)
}

// =============================================================================

func (s *State) block(from account.Account, target account.Account) error {
	if from != s.admin {
		return ErrUnauthorized
	}

	s.blocks.Block(target)
	return nil
}

func (s *State) unblock(from account.Account, target account.Account) error {
	if from != s.admin {
		return ErrUnauthorized
	}

	s.blocks.Unblock(target)
	return nil
}

func (s *State) setPenaltyRecipient(from account.Account, recipient account.Account) error {
	if from != s.admin {
		return ErrUnauthorized
	}

	s.recipient = recipient
	return nil
}

func (s *State) transferOwnership(from account.Account, admin account.Account) error {
	if from != s.admin {
		return ErrUnauthorized
	}

	s.admin = admin
	return nil
}
