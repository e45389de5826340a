// Package blocklist classifies participants that are restricted from adding
// weight to the escrow or receiving delegations.
package blocklist

import (
	"sort"
	"sync"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
)

// Notifier is called when a participant transitions into the blocked state.
type Notifier func(a account.Account)

// List maintains the set of blocked participants.
type List struct {
	blocked map[account.Account]struct{}
	notify  Notifier
	mu      sync.RWMutex
}

// New constructs a blocklist with the initial set of blocked participants.
// The notifier may be nil.
func New(initial []account.Account, notify Notifier) *List {
	l := List{
		blocked: make(map[account.Account]struct{}),
		notify:  notify,
	}

	for _, a := range initial {
		l.blocked[a] = struct{}{}
	}

	return &l
}

// IsBlocked reports whether the participant is currently blocked.
func (l *List) IsBlocked(a account.Account) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, exists := l.blocked[a]
	return exists
}

// Block adds the participant to the list. The notifier only fires, and true
// is only returned, when the participant was not already blocked.
func (l *List) Block(a account.Account) bool {
	l.mu.Lock()
	_, exists := l.blocked[a]
	l.blocked[a] = struct{}{}
	l.mu.Unlock()

	if exists {
		return false
	}

	if l.notify != nil {
		l.notify(a)
	}
	return true
}

// Unblock removes the participant from the list and reports whether it
// was blocked.
func (l *List) Unblock(a account.Account) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, exists := l.blocked[a]
	delete(l.blocked, a)
	return exists
}

// Copy returns the blocked participants in a stable order.
func (l *List) Copy() []account.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]account.Account, 0, len(l.blocked))
	for a := range l.blocked {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
