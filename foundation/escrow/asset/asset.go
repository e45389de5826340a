// Package asset maintains the balances and allowances of the fungible asset
// that participants lock into the escrow.
package asset

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/holiman/uint256"
)

// Set of error variables for asset transfers.
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Sheet represents the data representation to maintain account balances
// and the allowances owners grant to spenders.
type Sheet struct {
	balances   map[account.Account]uint256.Int
	allowances map[account.Account]map[account.Account]uint256.Int
	mu         sync.RWMutex
}

// NewSheet constructs a new balance sheet for use, expects a starting
// balance sheet usually from a genesis file.
func NewSheet(balances map[account.Account]uint256.Int) *Sheet {
	bs := Sheet{}
	bs.Reset(balances)

	return &bs
}

// Reset takes the specified balances and resets the sheet, dropping every
// allowance.
func (bs *Sheet) Reset(balances map[account.Account]uint256.Int) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.balances = make(map[account.Account]uint256.Int)
	bs.allowances = make(map[account.Account]map[account.Account]uint256.Int)
	for a, v := range balances {
		bs.balances[a] = v
	}
}

// Copy makes a copy of the current balances.
func (bs *Sheet) Copy() map[account.Account]uint256.Int {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	balances := make(map[account.Account]uint256.Int, len(bs.balances))
	for a, v := range bs.balances {
		balances[a] = v
	}
	return balances
}

// BalanceOf returns the balance held by the account.
func (bs *Sheet) BalanceOf(a account.Account) uint256.Int {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	return bs.balances[a]
}

// Allowance returns how much spender may still pull from owner.
func (bs *Sheet) Allowance(owner, spender account.Account) uint256.Int {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	return bs.allowances[owner][spender]
}

// Approve sets the amount spender may pull from owner.
func (bs *Sheet) Approve(owner, spender account.Account, amount *uint256.Int) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	set, exists := bs.allowances[owner]
	if !exists {
		set = make(map[account.Account]uint256.Int)
		bs.allowances[owner] = set
	}

	if amount.IsZero() {
		delete(set, spender)
		return
	}
	set[spender] = *amount
}

// Transfer moves amount from one account to another.
func (bs *Sheet) Transfer(from, to account.Account, amount *uint256.Int) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	return bs.move(from, to, amount)
}

// Pull moves amount from owner to spender, consuming owner's allowance.
func (bs *Sheet) Pull(owner, spender account.Account, amount *uint256.Int) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	allowance := bs.allowances[owner][spender]
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%s pulling %s from %s: %w", spender, amount.Dec(), owner, ErrInsufficientAllowance)
	}

	if err := bs.move(owner, spender, amount); err != nil {
		return err
	}

	allowance.Sub(&allowance, amount)
	if allowance.IsZero() {
		delete(bs.allowances[owner], spender)
		return nil
	}
	bs.allowances[owner][spender] = allowance

	return nil
}

// =============================================================================

// move performs the transfer, the caller must hold the lock.
func (bs *Sheet) move(from, to account.Account, amount *uint256.Int) error {
	balance := bs.balances[from]
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%s sending %s: %w", from, amount.Dec(), ErrInsufficientBalance)
	}

	balance.Sub(&balance, amount)
	bs.balances[from] = balance

	dest := bs.balances[to]
	dest.Add(&dest, amount)
	bs.balances[to] = dest

	return nil
}
