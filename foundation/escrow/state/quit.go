package state

import (
	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
	"github.com/ardanlabs/escrow/foundation/escrow/ledger"
	"github.com/holiman/uint256"
)

// QuitLock ends the caller's lock early. The part of the amount forfeited
// for the remaining time goes to the penalty pool, the rest is returned.
func (s *State) QuitLock(from account.Account) error {
	return s.execute(from, journal.Tx{Op: journal.OpQuitLock}, false)
}

// CollectPenalty sends the penalty pool to the penalty recipient.
func (s *State) CollectPenalty(from account.Account) error {
	return s.execute(from, journal.Tx{Op: journal.OpCollectPenalty}, false)
}

// Unlock turns off penalties for every future quit. There is no way back.
func (s *State) Unlock(from account.Account) error {
	return s.execute(from, journal.Tx{Op: journal.OpUnlock}, false)
}

// =============================================================================

func (s *State) quitLock(now curve.Moment, from account.Account) error {
	lb := s.ledger.Get(from)
	if !lb.Active() {
		return ErrNoLock
	}
	if lb.IsDelegatedAway(from) {
		return ErrLockDelegated
	}

	penalty := s.penaltyFor(lb, now.Timestamp)
	remaining := curve.SubFloor(&lb.Amount, &penalty)

	if err := s.assets.Transfer(s.escrow, from, &remaining); err != nil {
		return err
	}
	s.penalty = curve.Add(&s.penalty, &penalty)

	s.release(now, from, lb, change{
		old: contribution{holder: from, amount: lb.Amount, end: lb.End},
		new: contribution{holder: from},
	})

	return nil
}

// penaltyFor computes amount * ((end - now) * maxPenalty / MAXTIME) / 1e18,
// capped at the locked amount.
func (s *State) penaltyFor(lb ledger.LockedBalance, now uint64) uint256.Int {
	var penalty uint256.Int
	if lb.End <= now || s.maxPenalty.IsZero() {
		return penalty
	}

	var rate uint256.Int
	rate.Mul(uint256.NewInt(lb.End-now), &s.maxPenalty)
	rate.Div(&rate, uint256.NewInt(s.params.MaxTime))

	penalty.Mul(&lb.Amount, &rate)
	penalty.Div(&penalty, curve.Unit)

	if penalty.Cmp(&lb.Amount) > 0 {
		return lb.Amount
	}
	return penalty
}

func (s *State) collectPenalty(from account.Account) error {
	if from != s.admin {
		return ErrUnauthorized
	}

	if s.penalty.IsZero() {
		return nil
	}

	if err := s.assets.Transfer(s.escrow, s.recipient, &s.penalty); err != nil {
		return err
	}
	s.penalty.Clear()

	return nil
}

func (s *State) unlock(from account.Account) error {
	if from != s.admin {
		return ErrUnauthorized
	}

	s.maxPenalty.Clear()
	return nil
}
