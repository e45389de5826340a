// Package state is the core API for the escrow and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/asset"
	"github.com/ardanlabs/escrow/foundation/escrow/blocklist"
	"github.com/ardanlabs/escrow/foundation/escrow/checkpoint"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/genesis"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
	"github.com/ardanlabs/escrow/foundation/escrow/journal/memory"
	"github.com/ardanlabs/escrow/foundation/escrow/ledger"
	"github.com/ardanlabs/escrow/foundation/events"
	"github.com/holiman/uint256"
)

// DefaultEscrow is the account holding the locked asset when the genesis
// file doesn't name one.
const DefaultEscrow account.Account = "0x000000000000000000000000000000000000e5c0"

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of transactions.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the escrow.
type Config struct {
	Genesis    genesis.Genesis
	Serializer journal.Serializer // Defaults to an in memory journal.
	Clock      Clock              // Defaults to one block per transaction on the wall clock.
	EvHandler  EventHandler
	Events     *events.Events
}

// State manages the escrow: the lock ledger, the global and participant
// decay lines and the collaborators they depend on.
type State struct {
	mu sync.RWMutex

	genesis   genesis.Genesis
	params    curve.Params
	escrow    account.Account
	evHandler EventHandler
	evts      *events.Events
	clock     Clock
	journal   journal.Serializer

	last curve.Moment // Moment of the last applied transaction.
	now  curve.Moment // Moment of the transaction being applied.

	global *checkpoint.Line
	users  map[account.Account]*checkpoint.Line
	ledger *ledger.Ledger
	assets *asset.Sheet
	blocks *blocklist.List

	admin      account.Account
	recipient  account.Account
	maxPenalty uint256.Int
	penalty    uint256.Int
	nonces     map[account.Account]uint64
}

// New constructs the escrow from the genesis information and replays every
// entry found in the journal.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	params := cfg.Genesis.Params()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	maxPenalty, err := cfg.Genesis.Penalty()
	if err != nil {
		return nil, err
	}

	balances, err := cfg.Genesis.Accounts()
	if err != nil {
		return nil, err
	}

	blocked, err := cfg.Genesis.BlockedAccounts()
	if err != nil {
		return nil, err
	}

	escrowHex := cfg.Genesis.Escrow
	if escrowHex == "" {
		escrowHex = DefaultEscrow.String()
	}
	escrow, err := account.ToAccount(escrowHex)
	if err != nil {
		return nil, fmt.Errorf("escrow account: %w", err)
	}

	s := State{
		genesis:    cfg.Genesis,
		params:     params,
		escrow:     escrow,
		evHandler:  ev,
		evts:       cfg.Events,
		clock:      cfg.Clock,
		journal:    cfg.Serializer,
		global:     checkpoint.NewGlobal(),
		users:      make(map[account.Account]*checkpoint.Line),
		ledger:     ledger.New(),
		assets:     asset.NewSheet(balances),
		maxPenalty: maxPenalty,
		nonces:     make(map[account.Account]uint64),
	}

	// Blocking a participant reverses its delegations in the same
	// transaction that blocked it.
	s.blocks = blocklist.New(blocked, s.undelegateBlocked)

	if s.admin, err = optionalAccount(cfg.Genesis.Admin); err != nil {
		return nil, fmt.Errorf("admin account: %w", err)
	}
	if s.recipient, err = optionalAccount(cfg.Genesis.PenaltyRecipient); err != nil {
		return nil, fmt.Errorf("penalty recipient: %w", err)
	}
	if s.recipient == "" {
		s.recipient = s.admin
	}

	if s.clock == nil {
		s.clock = chainClock{state: &s, wall: time.Now}
	}
	if s.journal == nil {
		s.journal = memory.New()
	}

	// Rebuild the escrow by replaying every transaction at the moment it
	// was originally applied.
	var replayed int
	iter := s.journal.ForEach()
	for {
		entry, err := iter.Next()
		if errors.Is(err, journal.ErrEndOfJournal) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading journal: %w", err)
		}

		if err := s.apply(entry.Moment(), entry.From, entry.Tx); err != nil {
			return nil, fmt.Errorf("replaying entry seq[%d] op[%s]: %w", entry.Sequence, entry.Tx.Op, err)
		}
		replayed++
	}

	ev("state: New: replayed[%d] last seq[%d] global epoch[%d]", replayed, s.last.Sequence, s.global.Epoch())

	return &s, nil
}

// Shutdown cleanly brings the escrow down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.journal.Close()
}

// =============================================================================

// userLine returns the participant's line, creating it on first use.
func (s *State) userLine(a account.Account) *checkpoint.Line {
	l, exists := s.users[a]
	if !exists {
		l = checkpoint.NewUser()
		s.users[a] = l
	}
	return l
}

// optionalAccount converts hex into an account, allowing an empty value.
func optionalAccount(hex string) (account.Account, error) {
	if hex == "" {
		return "", nil
	}
	return account.ToAccount(hex)
}
