package state

import (
	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/ledger"
	"github.com/holiman/uint256"
)

// BalanceOf returns the participant's voting weight now.
func (s *State) BalanceOf(a account.Account) uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.users[a]
	if !exists {
		return uint256.Int{}
	}

	return l.ValueAt(l.Last(), s.clock.Now().Timestamp)
}

// TotalSupply returns the sum of all voting weight now.
func (s *State) TotalSupply() uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.global.ValueAt(s.global.Last(), s.clock.Now().Timestamp)
}

// BalanceOfAt returns the participant's voting weight at a past sequence.
func (s *State) BalanceOfAt(a account.Account, seq uint64) (uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ts, ok, err := s.timestampAt(seq)
	if err != nil || !ok {
		return uint256.Int{}, err
	}

	l, exists := s.users[a]
	if !exists {
		return uint256.Int{}, nil
	}

	epoch, p := l.FindAt(seq, ts)
	if epoch == 0 {
		return uint256.Int{}, nil
	}

	return l.ValueAt(p, ts), nil
}

// TotalSupplyAt returns the sum of all voting weight at a past sequence.
func (s *State) TotalSupplyAt(seq uint64) (uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ts, ok, err := s.timestampAt(seq)
	if err != nil || !ok {
		return uint256.Int{}, err
	}

	_, p := s.global.FindAt(seq, ts)
	return s.global.ValueAt(p, ts), nil
}

// timestampAt estimates the wall clock time of a past sequence using the
// global point at or before it and the point after it, or now when there
// is none. False is returned when no global point exists at or before seq.
//
// A transaction can be followed by weekly points that carry its sequence.
// A sequence with recorded points was observed at the first of them.
func (s *State) timestampAt(seq uint64) (uint64, bool, error) {
	now := s.clock.Now()
	if seq >= now.Sequence {
		return 0, false, ErrOutOfRange
	}

	epoch, p := s.global.FindBefore(seq)
	if epoch == 0 {
		return 0, false, nil
	}

	if p.Sequence == seq {
		first := uint64(1)
		if seq > 0 {
			before, _ := s.global.FindBefore(seq - 1)
			first = before + 1
		}
		fp, _ := s.global.Point(first)
		return fp.Timestamp, true, nil
	}

	next := now
	if np, exists := s.global.Point(epoch + 1); exists {
		next = np.At()
	}

	return curve.InterpolateTimestamp(p.At(), next, seq), true, nil
}

// =============================================================================

// Locked returns the participant's locked balance.
func (s *State) Locked(a account.Account) ledger.LockedBalance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Get(a)
}

// LockEnd returns the end of the participant's lock, zero without a lock.
func (s *State) LockEnd(a account.Account) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Get(a).End
}

// GlobalEpoch returns the index of the latest global point.
func (s *State) GlobalEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.global.Epoch()
}

// PointHistory returns the global point at the epoch, the zero point when
// the epoch doesn't exist.
func (s *State) PointHistory(epoch uint64) curve.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, _ := s.global.Point(epoch)
	return p
}

// UserPointEpoch returns the index of the participant's latest point.
func (s *State) UserPointEpoch(a account.Account) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.users[a]
	if !exists {
		return 0
	}
	return l.Epoch()
}

// UserPointHistory returns the participant's point at the epoch, the zero
// point when the epoch doesn't exist.
func (s *State) UserPointHistory(a account.Account, epoch uint64) curve.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.users[a]
	if !exists {
		return curve.Point{}
	}

	p, _ := l.Point(epoch)
	return p
}

// GetLastUserPoint returns the participant's latest point.
func (s *State) GetLastUserPoint(a account.Account) curve.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.users[a]
	if !exists {
		return curve.Point{}
	}
	return l.Last()
}

// SlopeChanges returns the slope scheduled to leave the global line at ts.
func (s *State) SlopeChanges(ts uint64) uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.global.SlopeChange(ts)
}

// Penalty returns what the participant would forfeit by quitting now.
func (s *State) Penalty(a account.Account) uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.penaltyFor(s.ledger.Get(a), s.clock.Now().Timestamp)
}
