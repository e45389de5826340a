package state

import (
	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
	"github.com/ardanlabs/escrow/foundation/escrow/ledger"
	"github.com/holiman/uint256"
)

// CreateLock locks amount of the asset until end, rounded down to the epoch
// boundary. The escrow pulls the amount using the allowance from granted to
// the escrow account.
func (s *State) CreateLock(from account.Account, amount *uint256.Int, end uint64) error {
	return s.execute(from, journal.Tx{Op: journal.OpCreateLock, Amount: amount.Dec(), End: end}, false)
}

// IncreaseAmount adds amount to the active lock, keeping its end.
func (s *State) IncreaseAmount(from account.Account, amount *uint256.Int) error {
	return s.execute(from, journal.Tx{Op: journal.OpIncreaseAmount, Amount: amount.Dec()}, false)
}

// IncreaseUnlockTime moves the end of the active lock further out.
func (s *State) IncreaseUnlockTime(from account.Account, end uint64) error {
	return s.execute(from, journal.Tx{Op: journal.OpIncreaseUnlock, End: end}, false)
}

// Withdraw returns the full amount of an expired lock.
func (s *State) Withdraw(from account.Account) error {
	return s.execute(from, journal.Tx{Op: journal.OpWithdraw}, false)
}

// Checkpoint advances the global history to now without changing any lock.
func (s *State) Checkpoint(from account.Account) error {
	return s.execute(from, journal.Tx{Op: journal.OpCheckpoint}, false)
}

// Approve allows spender to pull up to amount from the caller.
func (s *State) Approve(from account.Account, spender account.Account, amount *uint256.Int) error {
	return s.execute(from, journal.Tx{Op: journal.OpApprove, Account: spender, Amount: amount.Dec()}, false)
}

// Transfer sends amount of the asset to another account.
func (s *State) Transfer(from account.Account, to account.Account, amount *uint256.Int) error {
	return s.execute(from, journal.Tx{Op: journal.OpTransfer, Account: to, Amount: amount.Dec()}, false)
}

// =============================================================================

func (s *State) createLock(now curve.Moment, from account.Account, amount *uint256.Int, end uint64) error {
	if amount.IsZero() {
		return ErrInvalidAmount
	}
	if s.blocks.IsBlocked(from) {
		return ErrBlocked
	}

	lb := s.ledger.Get(from)
	if lb.Active() {
		return ErrLockExists
	}

	unlockTime := s.params.Floor(end)
	if unlockTime <= now.Timestamp {
		return ErrInvalidEnd
	}
	if unlockTime > now.Timestamp+s.params.MaxTime {
		return ErrExceedsMaxTime
	}

	if err := s.assets.Pull(from, s.escrow, amount); err != nil {
		return err
	}

	lb.Amount = *amount
	lb.End = unlockTime
	lb.Delegatee = from

	s.checkpoint(now, change{
		old: contribution{holder: from},
		new: contribution{holder: from, amount: lb.Amount, end: lb.End},
	})
	s.ledger.Put(from, lb)

	return nil
}

func (s *State) increaseAmount(now curve.Moment, from account.Account, amount *uint256.Int) error {
	if amount.IsZero() {
		return ErrInvalidAmount
	}

	lb := s.ledger.Get(from)
	if !lb.Active() {
		return ErrNoLock
	}
	if lb.Expired(now.Timestamp) {
		return ErrLockExpired
	}
	if s.blocks.IsBlocked(from) {
		return ErrBlocked
	}

	if err := s.assets.Pull(from, s.escrow, amount); err != nil {
		return err
	}

	newAmount := curve.Add(&lb.Amount, amount)

	s.checkpoint(now, change{
		old: contribution{holder: lb.Delegatee, amount: lb.Amount, end: lb.End},
		new: contribution{holder: lb.Delegatee, amount: newAmount, end: lb.End},
	})

	if lb.Delegatee != from {
		dlg := s.ledger.Get(lb.Delegatee)
		dlg.Delegated = curve.Add(&dlg.Delegated, amount)
		s.ledger.Put(lb.Delegatee, dlg)
	}

	lb.Amount = newAmount
	s.ledger.Put(from, lb)

	return nil
}

func (s *State) increaseUnlockTime(now curve.Moment, from account.Account, end uint64) error {
	lb := s.ledger.Get(from)
	if !lb.Active() {
		return ErrNoLock
	}
	if lb.Expired(now.Timestamp) {
		return ErrLockExpired
	}
	if s.blocks.IsBlocked(from) {
		return ErrBlocked
	}

	unlockTime := s.params.Floor(end)
	if unlockTime <= lb.End {
		return errOnlyIncreaseEnd
	}
	if unlockTime > now.Timestamp+s.params.MaxTime {
		return ErrExceedsMaxTime
	}

	s.checkpoint(now, change{
		old: contribution{holder: lb.Delegatee, amount: lb.Amount, end: lb.End},
		new: contribution{holder: lb.Delegatee, amount: lb.Amount, end: unlockTime},
	})

	lb.End = unlockTime
	s.ledger.Put(from, lb)

	return nil
}

func (s *State) withdraw(now curve.Moment, from account.Account) error {
	lb := s.ledger.Get(from)
	if !lb.Active() {
		return ErrNoLock
	}
	if now.Timestamp < lb.End {
		return ErrLockNotExpired
	}

	if err := s.assets.Transfer(s.escrow, from, &lb.Amount); err != nil {
		return err
	}

	s.release(now, from, lb, change{
		old: contribution{holder: lb.Delegatee, amount: lb.Amount, end: lb.End},
		new: contribution{holder: from},
	})

	return nil
}

// release zeroes the participant's lock together with the line change that
// removes it. A participant without a lock can't hold weight, so every lock
// delegated to it goes back to its owner in the same checkpoint.
func (s *State) release(now curve.Moment, from account.Account, lb ledger.LockedBalance, own change) {
	changes := []change{own}
	for _, d := range s.ledger.Delegators(from) {
		changes = append(changes, s.redirect(d, d))
	}
	if n := len(changes) - 1; n > 0 {
		s.evHandler("state: release: holder[%s] returned[%d]", from, n)
	}

	s.checkpoint(now, changes...)

	if lb.Delegatee != from {
		dlg := s.ledger.Get(lb.Delegatee)
		dlg.Delegated = curve.SubFloor(&dlg.Delegated, &lb.Amount)
		s.ledger.Put(lb.Delegatee, dlg)
	}

	s.ledger.Put(from, ledger.LockedBalance{})
}
