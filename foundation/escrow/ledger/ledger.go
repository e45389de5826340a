// Package ledger maintains the locked position of every participant in memory.
package ledger

import (
	"sort"
	"sync"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/holiman/uint256"
)

// LockedBalance is the position a participant holds in the escrow.
type LockedBalance struct {
	Amount    uint256.Int     // Asset owned by this participant.
	Delegated uint256.Int     // Voting weight received from other participants.
	End       uint64          // Epoch aligned expiry, zero when there is no lock.
	Delegatee account.Account // Receiver of this lock's weight, self when undelegated.
}

// Active reports whether the participant holds a lock, expired or not.
func (lb LockedBalance) Active() bool {
	return lb.End != 0
}

// Expired reports whether the lock ended at or before now.
func (lb LockedBalance) Expired(now uint64) bool {
	return lb.End <= now
}

// IsDelegatedAway reports whether the lock's weight is routed to someone
// other than owner.
func (lb LockedBalance) IsDelegatedAway(owner account.Account) bool {
	return lb.Active() && lb.Delegatee != owner
}

// =============================================================================

// Ledger maintains the locked balances and an index of who delegates to whom.
type Ledger struct {
	locks      map[account.Account]LockedBalance
	delegators map[account.Account]map[account.Account]struct{}
	mu         sync.RWMutex
}

// New constructs an empty ledger.
func New() *Ledger {
	return &Ledger{
		locks:      make(map[account.Account]LockedBalance),
		delegators: make(map[account.Account]map[account.Account]struct{}),
	}
}

// Reset clears out every position.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.locks = make(map[account.Account]LockedBalance)
	l.delegators = make(map[account.Account]map[account.Account]struct{})
}

// Get returns the locked balance for the participant. A participant who
// never locked gets back the zero value.
func (l *Ledger) Get(a account.Account) LockedBalance {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.locks[a]
}

// Put stores the locked balance for the participant and keeps the delegation
// index in step with the delegatee.
func (l *Ledger) Put(a account.Account, lb LockedBalance) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, exists := l.locks[a]; exists && old.Delegatee != "" && old.Delegatee != a {
		l.unlink(a, old.Delegatee)
	}
	if lb.Active() && lb.Delegatee != "" && lb.Delegatee != a {
		l.link(a, lb.Delegatee)
	}

	if !lb.Active() && lb.Delegated.IsZero() {
		delete(l.locks, a)
		return
	}
	l.locks[a] = lb
}

// Delegators returns the participants currently delegating to a, in a
// stable order.
func (l *Ledger) Delegators(a account.Account) []account.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	set := l.delegators[a]
	out := make([]account.Account, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Copy returns a copy of every position.
func (l *Ledger) Copy() map[account.Account]LockedBalance {
	l.mu.RLock()
	defer l.mu.RUnlock()

	locks := make(map[account.Account]LockedBalance, len(l.locks))
	for a, lb := range l.locks {
		locks[a] = lb
	}
	return locks
}

// TotalLocked returns the sum of every locked amount.
func (l *Ledger) TotalLocked() uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total uint256.Int
	for _, lb := range l.locks {
		total.Add(&total, &lb.Amount)
	}
	return total
}

// Holders returns the number of participants holding a lock.
func (l *Ledger) Holders() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var n int
	for _, lb := range l.locks {
		if lb.Active() {
			n++
		}
	}
	return n
}

// =============================================================================

func (l *Ledger) link(delegator, delegatee account.Account) {
	set, exists := l.delegators[delegatee]
	if !exists {
		set = make(map[account.Account]struct{})
		l.delegators[delegatee] = set
	}
	set[delegator] = struct{}{}
}

func (l *Ledger) unlink(delegator, delegatee account.Account) {
	set := l.delegators[delegatee]
	delete(set, delegator)
	if len(set) == 0 {
		delete(l.delegators, delegatee)
	}
}
