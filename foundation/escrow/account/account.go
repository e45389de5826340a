// Package account identifies the participants of the escrow.
package account

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalid is returned when a string can't be converted to an account.
var ErrInvalid = errors.New("invalid account format")

// Zero represents the absence of a participant.
const Zero Account = "0x0000000000000000000000000000000000000000"

// Account is the 20 byte hex address of a participant in checksum form.
type Account string

// ToAccount converts a hex-encoded string to an account and validates the
// hex-encoded string is formatted correctly. The returned value is always
// in checksum form so two spellings of the same address compare equal.
func ToAccount(hex string) (Account, error) {
	if !common.IsHexAddress(hex) || !has0xPrefix(hex) {
		return "", ErrInvalid
	}

	return Account(common.HexToAddress(hex).Hex()), nil
}

// MustAccount is ToAccount for constants known to be valid.
func MustAccount(hex string) Account {
	a, err := ToAccount(hex)
	if err != nil {
		panic(err)
	}
	return a
}

// PublicKeyToAccount converts the public key to an account value.
func PublicKeyToAccount(pk ecdsa.PublicKey) Account {
	return Account(crypto.PubkeyToAddress(pk).Hex())
}

// IsAccount verifies whether the underlying data represents a valid
// hex-encoded account.
func (a Account) IsAccount() bool {
	return has0xPrefix(string(a)) && common.IsHexAddress(string(a))
}

// IsZero reports whether the account is the zero address or empty.
func (a Account) IsZero() bool {
	return a == "" || strings.EqualFold(string(a), string(Zero))
}

// String implements the fmt.Stringer interface.
func (a Account) String() string {
	return string(a)
}

// =============================================================================

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(a string) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}
