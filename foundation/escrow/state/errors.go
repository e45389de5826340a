package state

import (
	"errors"

	"github.com/ardanlabs/escrow/foundation/escrow/asset"
)

// Set of error variables for rejected operations. Every rejection leaves the
// escrow unchanged.
var (
	ErrInvalidAmount    = errors.New("Only non zero amount")
	ErrLockExists       = errors.New("Lock exists")
	ErrNoLock           = errors.New("No lock")
	ErrLockExpired      = errors.New("Lock expired")
	ErrLockNotExpired   = errors.New("Lock not expired")
	ErrInvalidEnd       = errors.New("Only future lock end")
	ErrExceedsMaxTime   = errors.New("Exceeds maxtime")
	ErrBlocked          = errors.New("Blocked contract")
	ErrLockDelegated    = errors.New("Lock delegated")
	ErrOutOfRange       = errors.New("Only past block number")
	ErrUnauthorized     = errors.New("Only admin")
	ErrAlreadyDelegated = errors.New("Already delegated")
	ErrDelegateeNoLock  = errors.New("Delegatee has no lock")
	ErrShorterLock      = errors.New("Only delegate to longer lock")
	ErrInvalidAccount   = errors.New("Invalid account")
	ErrClockRegressed   = errors.New("Clock moved backwards")
	ErrNonce            = errors.New("Nonce already used")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrLockExists, "LockExists"},
	{ErrNoLock, "NoLock"},
	{ErrLockExpired, "LockExpired"},
	{ErrLockNotExpired, "LockNotExpired"},
	{ErrInvalidEnd, "InvalidEnd"},
	{ErrExceedsMaxTime, "ExceedsMaxTime"},
	{ErrBlocked, "Blocked"},
	{ErrLockDelegated, "LockDelegated"},
	{ErrOutOfRange, "OutOfRange"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrAlreadyDelegated, "AlreadyDelegated"},
	{ErrDelegateeNoLock, "DelegateeNoLock"},
	{ErrShorterLock, "ShorterLock"},
	{ErrInvalidAccount, "InvalidAccount"},
	{ErrClockRegressed, "ClockRegressed"},
	{ErrNonce, "Nonce"},
	{asset.ErrInsufficientBalance, "InsufficientBalance"},
	{asset.ErrInsufficientAllowance, "InsufficientAllowance"},
}

// Code returns the stable identifier for a rejected operation, or an empty
// string when the error didn't come from a rejected precondition.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// reason carries a more specific message for a sentinel error.
type reason struct {
	msg string
	err error
}

func (r reason) Error() string { return r.msg }
func (r reason) Unwrap() error { return r.err }

var errOnlyIncreaseEnd = reason{msg: "Only increase lock end", err: ErrInvalidEnd}
