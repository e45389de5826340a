package state

import (
	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
)

// Delegate routes the voting weight of the caller's lock to another
// participant. Delegating to self undelegates.
func (s *State) Delegate(from account.Account, to account.Account) error {
	return s.execute(from, journal.Tx{Op: journal.OpDelegate, Account: to}, false)
}

// =============================================================================

func (s *State) delegate(now curve.Moment, from account.Account, to account.Account) error {
	if s.blocks.IsBlocked(from) || s.blocks.IsBlocked(to) {
		return ErrBlocked
	}

	lb := s.ledger.Get(from)
	if !lb.Active() {
		return ErrNoLock
	}
	if lb.Expired(now.Timestamp) {
		return ErrLockExpired
	}
	if to == lb.Delegatee {
		return ErrAlreadyDelegated
	}

	if to != from {
		target := s.ledger.Get(to)
		if !target.Active() || target.Expired(now.Timestamp) {
			return ErrDelegateeNoLock
		}
		if target.End < lb.End {
			return ErrShorterLock
		}
	}

	s.checkpoint(now, s.redirect(from, to))

	return nil
}

// undelegateBlocked is notified when a participant becomes blocked. Its own
// lock comes back to itself and every lock delegated to it goes back to its
// owner, all at the moment of the transaction that blocked it.
func (s *State) undelegateBlocked(blocked account.Account) {
	var changes []change

	if lb := s.ledger.Get(blocked); lb.IsDelegatedAway(blocked) {
		changes = append(changes, s.redirect(blocked, blocked))
	}

	for _, d := range s.ledger.Delegators(blocked) {
		changes = append(changes, s.redirect(d, d))
	}

	if len(changes) == 0 {
		return
	}

	s.evHandler("state: undelegate: blocked[%s] reversed[%d]", blocked, len(changes))
	s.checkpoint(s.now, changes...)
}

// redirect moves the delegator's lock to the new delegatee in the ledger
// and returns the line change the move requires.
func (s *State) redirect(delegator account.Account, to account.Account) change {
	lb := s.ledger.Get(delegator)
	from := lb.Delegatee

	if from != delegator {
		dlg := s.ledger.Get(from)
		dlg.Delegated = curve.SubFloor(&dlg.Delegated, &lb.Amount)
		s.ledger.Put(from, dlg)
	}

	if to != delegator {
		dlg := s.ledger.Get(to)
		dlg.Delegated = curve.Add(&dlg.Delegated, &lb.Amount)
		s.ledger.Put(to, dlg)
	}

	lb.Delegatee = to
	s.ledger.Put(delegator, lb)

	return change{
		old: contribution{holder: from, amount: lb.Amount, end: lb.End},
		new: contribution{holder: to, amount: lb.Amount, end: lb.End},
	}
}
