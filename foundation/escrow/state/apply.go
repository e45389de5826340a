package state

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
	"github.com/ardanlabs/escrow/foundation/events"
	"github.com/holiman/uint256"
)

// execute applies the transaction at the clock's current moment and records
// it in the journal. Transactions are serialized; a rejected transaction
// leaves the escrow unchanged.
func (s *State) execute(from account.Account, tx journal.Tx, checkNonce bool) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	// Stores are keyed by the checksum form, so every spelling of an
	// address must reach them as the same participant.
	sender, err := account.ToAccount(from.String())
	if err != nil {
		return fmt.Errorf("from %q: %w", from, ErrInvalidAccount)
	}
	from = sender

	if tx.Account != "" {
		target, err := account.ToAccount(tx.Account.String())
		if err != nil {
			return fmt.Errorf("account %q: %w", tx.Account, ErrInvalidAccount)
		}
		tx.Account = target
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if checkNonce && tx.Nonce <= s.nonces[from] {
		return fmt.Errorf("nonce %d, last used %d: %w", tx.Nonce, s.nonces[from], ErrNonce)
	}

	now := s.clock.Now()
	if now.Before(s.last) {
		return fmt.Errorf("now[%d:%d] last[%d:%d]: %w", now.Timestamp, now.Sequence, s.last.Timestamp, s.last.Sequence, ErrClockRegressed)
	}

	if err := s.apply(now, from, tx); err != nil {
		return err
	}

	// The escrow already moved forward in memory. If the journal can't keep
	// up the node has to be restarted from what is on disk.
	if err := s.journal.Write(journal.NewEntry(now, from, tx)); err != nil {
		s.evHandler("state: execute: journal: ERROR: %s", err)
		return fmt.Errorf("writing journal: %w", err)
	}

	s.evHandler("state: execute: op[%s] from[%s] seq[%d] ts[%d]", tx.Op, from, now.Sequence, now.Timestamp)
	s.emit(now, from, tx)

	return nil
}

// apply performs the operation the transaction carries at the moment.
func (s *State) apply(now curve.Moment, from account.Account, tx journal.Tx) error {
	s.now = now

	amount, err := parseAmount(tx)
	if err != nil {
		return err
	}

	switch tx.Op {
	case journal.OpApprove, journal.OpTransfer, journal.OpDelegate, journal.OpBlock,
		journal.OpUnblock, journal.OpSetRecipient, journal.OpTransferOwner:
		if tx.Account.IsZero() {
			return fmt.Errorf("op %s: %w", tx.Op, ErrInvalidAccount)
		}
	}

	switch tx.Op {
	case journal.OpApprove:
		s.assets.Approve(from, tx.Account, amount)
	case journal.OpTransfer:
		err = s.assets.Transfer(from, tx.Account, amount)
	case journal.OpCreateLock:
		err = s.createLock(now, from, amount, tx.End)
	case journal.OpIncreaseAmount:
		err = s.increaseAmount(now, from, amount)
	case journal.OpIncreaseUnlock:
		err = s.increaseUnlockTime(now, from, tx.End)
	case journal.OpWithdraw:
		err = s.withdraw(now, from)
	case journal.OpQuitLock:
		err = s.quitLock(now, from)
	case journal.OpDelegate:
		err = s.delegate(now, from, tx.Account)
	case journal.OpCheckpoint:
		s.checkpoint(now)
	case journal.OpCollectPenalty:
		err = s.collectPenalty(from)
	case journal.OpUnlock:
		err = s.unlock(from)
	case journal.OpBlock:
		err = s.block(from, tx.Account)
	case journal.OpUnblock:
		err = s.unblock(from, tx.Account)
	case journal.OpSetRecipient:
		err = s.setPenaltyRecipient(from, tx.Account)
	case journal.OpTransferOwner:
		err = s.transferOwnership(from, tx.Account)
	default:
		err = fmt.Errorf("unknown operation %q", tx.Op)
	}

	if err != nil {
		return err
	}

	s.last = now
	if tx.Nonce > s.nonces[from] {
		s.nonces[from] = tx.Nonce
	}

	return nil
}

// emit sends the applied transaction to any event subscribers.
func (s *State) emit(now curve.Moment, from account.Account, tx journal.Tx) {
	if s.evts == nil {
		return
	}

	err := s.evts.Send(events.Event{
		Kind:      tx.Op,
		Account:   from.String(),
		Target:    tx.Account.String(),
		Amount:    tx.Amount,
		End:       s.ledger.Get(from).End,
		Sequence:  now.Sequence,
		Timestamp: now.Timestamp,
	})
	if err != nil {
		s.evHandler("state: emit: ERROR: %s", err)
	}
}

func parseAmount(tx journal.Tx) (*uint256.Int, error) {
	if tx.Amount == "" {
		return new(uint256.Int), nil
	}

	amount, err := uint256.FromDecimal(tx.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", tx.Amount, ErrInvalidAmount)
	}
	return amount, nil
}

// =============================================================================

// contribution is the weight one lock adds to the line of its holder, the
// participant the lock is delegated to. A lock contributes until its own end.
type contribution struct {
	holder account.Account
	amount uint256.Int
	end    uint64
}

// live reports whether the contribution still adds weight at ts.
func (c contribution) live(ts uint64) bool {
	return c.holder != "" && c.end > ts && !c.amount.IsZero()
}

// change moves a lock's weight from one contribution to another.
type change struct {
	old contribution
	new contribution
}

// checkpoint advances the global line to now, applies the changes to the
// global and holder lines, and records a global point plus one point for
// every holder that was touched.
func (s *State) checkpoint(now curve.Moment, changes ...change) {
	global := s.global.Advance(s.params, now)

	users := make(map[account.Account]*curve.Point)
	touch := func(h account.Account) *curve.Point {
		if p, exists := users[h]; exists {
			return p
		}
		l := s.userLine(h)
		p := l.Project(l.Last(), now.Timestamp)
		p.Timestamp = now.Timestamp
		p.Sequence = now.Sequence
		users[h] = &p
		return &p
	}

	for _, ch := range changes {
		if ch.old.live(now.Timestamp) {
			slope := s.params.Slope(&ch.old.amount)
			bias := curve.BiasFromSlope(&slope, ch.old.end, now.Timestamp)

			global.Bias = curve.SubFloor(&global.Bias, &bias)
			global.Slope = curve.SubFloor(&global.Slope, &slope)
			s.global.CancelExpiry(ch.old.end, &slope)

			up := touch(ch.old.holder)
			up.Bias = curve.SubFloor(&up.Bias, &bias)
			up.Slope = curve.SubFloor(&up.Slope, &slope)
			s.userLine(ch.old.holder).CancelExpiry(ch.old.end, &slope)
		} else if ch.old.holder != "" {
			touch(ch.old.holder)
		}

		if ch.new.live(now.Timestamp) {
			slope := s.params.Slope(&ch.new.amount)
			bias := curve.BiasFromSlope(&slope, ch.new.end, now.Timestamp)

			global.Bias = curve.Add(&global.Bias, &bias)
			global.Slope = curve.Add(&global.Slope, &slope)
			s.global.ScheduleExpiry(ch.new.end, &slope)

			up := touch(ch.new.holder)
			up.Bias = curve.Add(&up.Bias, &bias)
			up.Slope = curve.Add(&up.Slope, &slope)
			s.userLine(ch.new.holder).ScheduleExpiry(ch.new.end, &slope)
		} else if ch.new.holder != "" {
			touch(ch.new.holder)
		}
	}

	s.global.Record(global)

	holders := make([]account.Account, 0, len(users))
	for h := range users {
		holders = append(holders, h)
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i] < holders[j] })

	for _, h := range holders {
		s.users[h].Record(*users[h])
	}
}
