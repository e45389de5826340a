// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date             time.Time         `json:"date" yaml:"date"`
	ChainID          uint16            `json:"chain_id" yaml:"chain_id"`                   // Unique id for this running instance.
	Admin            string            `json:"admin" yaml:"admin"`                         // Account allowed to run administrative operations.
	PenaltyRecipient string            `json:"penalty_recipient" yaml:"penalty_recipient"` // Account collected penalties are sent to.
	Escrow           string            `json:"escrow" yaml:"escrow"`                       // Account holding the locked asset.
	MaxTime          uint64            `json:"max_time" yaml:"max_time"`                   // Longest lock duration in seconds.
	Epoch            uint64            `json:"epoch" yaml:"epoch"`                         // Lock end granularity in seconds.
	Tolerance        uint64            `json:"tolerance" yaml:"tolerance"`                 // Accepted error, in base units, of interpolated history reads.
	MaxPenalty       string            `json:"max_penalty" yaml:"max_penalty"`             // Penalty ratio for a full length quit, 1e18 is 100%.
	Balances         map[string]string `json:"balances" yaml:"balances"`                   // Starting asset balances in base units.
	Blocked          []string          `json:"blocked" yaml:"blocked"`                     // Accounts blocked from the start.
}

// =============================================================================

// Load opens and consumes the genesis file. Files ending in .yaml or .yml
// are decoded as YAML, everything else as JSON.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &genesis)
	default:
		err = json.Unmarshal(content, &genesis)
	}
	if err != nil {
		return Genesis{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	return genesis, nil
}

// Params returns the line parameters, falling back to a one year max time
// with weekly epochs.
func (g Genesis) Params() curve.Params {
	params := curve.DefaultParams()
	if g.MaxTime != 0 {
		params.MaxTime = g.MaxTime
	}
	if g.Epoch != 0 {
		params.Epoch = g.Epoch
	}
	params.Tolerance = g.Tolerance
	return params
}

// Penalty returns the max penalty ratio, 100% when not provided.
func (g Genesis) Penalty() (uint256.Int, error) {
	if g.MaxPenalty == "" {
		return *curve.Unit, nil
	}

	v, err := uint256.FromDecimal(g.MaxPenalty)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("max penalty %q: %w", g.MaxPenalty, err)
	}
	if v.Cmp(curve.Unit) > 0 {
		return uint256.Int{}, fmt.Errorf("max penalty %q exceeds 100%%", g.MaxPenalty)
	}

	return *v, nil
}

// Accounts converts the starting balances.
func (g Genesis) Accounts() (map[account.Account]uint256.Int, error) {
	balances := make(map[account.Account]uint256.Int, len(g.Balances))
	for hex, value := range g.Balances {
		a, err := account.ToAccount(hex)
		if err != nil {
			return nil, fmt.Errorf("balance account %q: %w", hex, err)
		}

		v, err := uint256.FromDecimal(value)
		if err != nil {
			return nil, fmt.Errorf("balance for %s: %w", a, err)
		}
		balances[a] = *v
	}

	return balances, nil
}

// BlockedAccounts converts the initially blocked accounts.
func (g Genesis) BlockedAccounts() ([]account.Account, error) {
	out := make([]account.Account, 0, len(g.Blocked))
	for _, hex := range g.Blocked {
		a, err := account.ToAccount(hex)
		if err != nil {
			return nil, fmt.Errorf("blocked account %q: %w", hex, err)
		}
		out = append(out, a)
	}

	return out, nil
}
