package public

import (
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/ledger"
)

type balance struct {
	Account  string `json:"account"`
	Name     string `json:"name"`
	Balance  string `json:"balance"`
	Sequence uint64 `json:"sequence"`
}

type supply struct {
	Supply   string `json:"supply"`
	Sequence uint64 `json:"sequence"`
}

type locked struct {
	Account   string `json:"account"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	End       uint64 `json:"end"`
	Delegatee string `json:"delegatee,omitempty"`
	Delegated string `json:"delegated"`
	Penalty   string `json:"penalty"`
}

type point struct {
	Epoch     uint64 `json:"epoch"`
	Bias      string `json:"bias"`
	Slope     string `json:"slope"`
	Timestamp uint64 `json:"timestamp"`
	Sequence  uint64 `json:"sequence"`
}

type info struct {
	Account   string `json:"account"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
	Allowance string `json:"allowance"`
	Nonce     uint64 `json:"nonce"`
	Blocked   bool   `json:"blocked"`
}

type status struct {
	ChainID        uint16   `json:"chain_id"`
	Escrow         string   `json:"escrow"`
	Admin          string   `json:"admin"`
	Recipient      string   `json:"penalty_recipient"`
	LastSequence   uint64   `json:"last_sequence"`
	LastTimestamp  uint64   `json:"last_timestamp"`
	GlobalEpoch    uint64   `json:"global_epoch"`
	TotalLocked    string   `json:"total_locked"`
	TotalSupply    string   `json:"total_supply"`
	Holders        int      `json:"holders"`
	PenaltyPool    string   `json:"penalty_accumulated"`
	MaxPenalty     string   `json:"max_penalty"`
	MaxTime        uint64   `json:"max_time"`
	Epoch          uint64   `json:"epoch"`
	BlockedAccount []string `json:"blocked"`
}

func toPoint(epoch uint64, p curve.Point) point {
	return point{
		Epoch:     epoch,
		Bias:      p.Bias.Dec(),
		Slope:     p.Slope.Dec(),
		Timestamp: p.Timestamp,
		Sequence:  p.Sequence,
	}
}

func toLocked(account string, name string, lb ledger.LockedBalance, penalty string) locked {
	return locked{
		Account:   account,
		Name:      name,
		Amount:    lb.Amount.Dec(),
		End:       lb.End,
		Delegatee: lb.Delegatee.String(),
		Delegated: lb.Delegated.Dec(),
		Penalty:   penalty,
	}
}
