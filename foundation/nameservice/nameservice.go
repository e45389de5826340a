// Package nameservice reads the zescrow/accounts folder and creates a name
// service lookup for the escrow participants.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[account.Account]string
}

// New constructs a name service with accounts from the key files found
// under root.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[account.Account]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return err
		}

		a := account.PublicKeyToAccount(privateKey.PublicKey)
		ns.accounts[a] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified account.
func (ns *NameService) Lookup(a account.Account) string {
	name, exists := ns.accounts[a]
	if !exists {
		return string(a)
	}
	return name
}

// Resolve returns the account registered under the name.
func (ns *NameService) Resolve(name string) (account.Account, bool) {
	for a, n := range ns.accounts {
		if n == name {
			return a, true
		}
	}
	return "", false
}

// Names returns the registered names in order.
func (ns *NameService) Names() []string {
	names := make([]string, 0, len(ns.accounts))
	for _, n := range ns.accounts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[account.Account]string {
	cpy := make(map[account.Account]string, len(ns.accounts))
	for a, name := range ns.accounts {
		cpy[a] = name
	}
	return cpy
}
