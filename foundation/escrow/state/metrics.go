package state

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes the escrow totals as prometheus gauges. The values are
// read from the state on every scrape.
type Collector struct {
	state *State

	totalLocked *prometheus.Desc
	totalSupply *prometheus.Desc
	penaltyPool *prometheus.Desc
	globalEpoch *prometheus.Desc
	holders     *prometheus.Desc
	blocked     *prometheus.Desc
}

// NewCollector constructs a collector for the state.
func NewCollector(s *State) *Collector {
	return &Collector{
		state:       s,
		totalLocked: prometheus.NewDesc("escrow_total_locked", "Sum of every locked amount in base units.", nil, nil),
		totalSupply: prometheus.NewDesc("escrow_total_supply", "Sum of all voting weight now.", nil, nil),
		penaltyPool: prometheus.NewDesc("escrow_penalty_accumulated", "Uncollected quit penalties in base units.", nil, nil),
		globalEpoch: prometheus.NewDesc("escrow_global_epoch", "Index of the latest global point.", nil, nil),
		holders:     prometheus.NewDesc("escrow_lock_holders", "Participants holding a lock.", nil, nil),
		blocked:     prometheus.NewDesc("escrow_blocked_accounts", "Accounts on the blocklist.", nil, nil),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalLocked
	ch <- c.totalSupply
	ch <- c.penaltyPool
	ch <- c.globalEpoch
	ch <- c.holders
	ch <- c.blocked
}

// Collect implements the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	locked := c.state.RetrieveTotalLocked()
	supply := c.state.TotalSupply()
	penalty := c.state.RetrievePenaltyAccumulated()

	ch <- prometheus.MustNewConstMetric(c.totalLocked, prometheus.GaugeValue, toFloat(&locked))
	ch <- prometheus.MustNewConstMetric(c.totalSupply, prometheus.GaugeValue, toFloat(&supply))
	ch <- prometheus.MustNewConstMetric(c.penaltyPool, prometheus.GaugeValue, toFloat(&penalty))
	ch <- prometheus.MustNewConstMetric(c.globalEpoch, prometheus.GaugeValue, float64(c.state.GlobalEpoch()))
	ch <- prometheus.MustNewConstMetric(c.holders, prometheus.GaugeValue, float64(c.state.RetrieveHolders()))
	ch <- prometheus.MustNewConstMetric(c.blocked, prometheus.GaugeValue, float64(len(c.state.RetrieveBlocked())))
}

func toFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}
