// Package curve provides the math for linear decay lines. A line is stored
// as a bias (the value at the point's timestamp) and a slope (value lost per
// second). All math is integer math and every division floors.
package curve

import (
	"errors"

	"github.com/holiman/uint256"
)

// Default parameters used when a genesis file doesn't provide them.
const (
	Week    uint64 = 7 * 86400
	MaxTime uint64 = 365 * 86400
)

// Unit is the fixed point unit used for penalty ratios (1e18 == 100%).
var Unit = uint256.NewInt(1_000_000_000_000_000_000)

// =============================================================================

// Params carries the constants every line calculation depends on.
type Params struct {
	MaxTime uint64 `json:"max_time" yaml:"max_time"` // Longest lock duration in seconds.
	Epoch   uint64 `json:"epoch" yaml:"epoch"`       // Granularity lock ends are rounded down to.

	// Tolerance is the largest difference, in base units, accepted between a
	// value read back through sequence interpolation and its exact value.
	Tolerance uint64 `json:"tolerance" yaml:"tolerance"`
}

// DefaultParams returns a one year max time with weekly epochs.
func DefaultParams() Params {
	return Params{
		MaxTime: MaxTime,
		Epoch:   Week,
	}
}

// Validate checks the parameters can be used for line math.
func (p Params) Validate() error {
	if p.Epoch == 0 {
		return errors.New("epoch length must be greater than zero")
	}
	if p.MaxTime < p.Epoch {
		return errors.New("max time must be at least one epoch")
	}
	return nil
}

// Within reports whether a and b differ by no more than the tolerance.
func (p Params) Within(a, b uint256.Int) bool {
	diff := SubFloor(&a, &b)
	if a.Cmp(&b) < 0 {
		diff = SubFloor(&b, &a)
	}
	return diff.CmpUint64(p.Tolerance) <= 0
}

// Floor rounds the timestamp down to the closest epoch boundary.
func (p Params) Floor(ts uint64) uint64 {
	return (ts / p.Epoch) * p.Epoch
}

// Slope computes amount / MAXTIME.
func (p Params) Slope(amount *uint256.Int) uint256.Int {
	var slope uint256.Int
	slope.Div(amount, uint256.NewInt(p.MaxTime))
	return slope
}

// Bias computes amount / MAXTIME * max(end - at, 0).
func (p Params) Bias(amount *uint256.Int, end uint64, at uint64) uint256.Int {
	slope := p.Slope(amount)
	return BiasFromSlope(&slope, end, at)
}

// BiasFromSlope computes slope * max(end - at, 0).
func BiasFromSlope(slope *uint256.Int, end uint64, at uint64) uint256.Int {
	var bias uint256.Int
	if end <= at {
		return bias
	}

	bias.Mul(slope, uint256.NewInt(end-at))
	return bias
}

// =============================================================================

// Moment identifies a position on the external ledger: the wall clock time
// in seconds and the monotonic sequence number observed at that time.
type Moment struct {
	Timestamp uint64 `json:"timestamp"`
	Sequence  uint64 `json:"sequence"`
}

// Before reports whether m happened before o on either axis.
func (m Moment) Before(o Moment) bool {
	return m.Timestamp < o.Timestamp || m.Sequence < o.Sequence
}

// =============================================================================

// Point is an immutable snapshot of a decay line.
type Point struct {
	Bias      uint256.Int
	Slope     uint256.Int
	Timestamp uint64
	Sequence  uint64
}

// At returns the moment the point was taken.
func (p Point) At() Moment {
	return Moment{Timestamp: p.Timestamp, Sequence: p.Sequence}
}

// ValueAt returns max(bias - slope*(t - timestamp), 0). A time before the
// point's timestamp returns the bias.
func (p Point) ValueAt(t uint64) uint256.Int {
	if t <= p.Timestamp {
		return p.Bias
	}

	var drop uint256.Int
	if _, overflow := drop.MulOverflow(&p.Slope, uint256.NewInt(t-p.Timestamp)); overflow || drop.Cmp(&p.Bias) >= 0 {
		return uint256.Int{}
	}

	var v uint256.Int
	v.Sub(&p.Bias, &drop)
	return v
}

// Decay moves the point forward to t without any slope change. When the line
// reaches zero both bias and slope are clamped to zero.
func (p Point) Decay(t uint64) Point {
	if t <= p.Timestamp {
		return p
	}

	p.Bias = p.ValueAt(t)
	if p.Bias.IsZero() {
		p.Slope.Clear()
	}
	p.Timestamp = t

	return p
}

// IsZero reports whether the point carries no weight.
func (p Point) IsZero() bool {
	return p.Bias.IsZero() && p.Slope.IsZero()
}

// =============================================================================

// SubFloor returns a - b, clamped at zero.
func SubFloor(a, b *uint256.Int) uint256.Int {
	var v uint256.Int
	if a.Cmp(b) <= 0 {
		return v
	}
	v.Sub(a, b)
	return v
}

// Add returns a + b.
func Add(a, b *uint256.Int) uint256.Int {
	var v uint256.Int
	v.Add(a, b)
	return v
}

// =============================================================================

// InterpolateSequence estimates the sequence number observed at ts by drawing
// a line between the two anchors. Times outside the anchors are clamped.
func InterpolateSequence(from, to Moment, ts uint64) uint64 {
	if ts <= from.Timestamp || to.Timestamp <= from.Timestamp || to.Sequence <= from.Sequence {
		return from.Sequence
	}
	if ts >= to.Timestamp {
		return to.Sequence
	}

	return from.Sequence + mulDiv(to.Sequence-from.Sequence, ts-from.Timestamp, to.Timestamp-from.Timestamp)
}

// InterpolateTimestamp estimates the wall clock time at which seq was observed
// by drawing a line between the two anchors. Sequences outside the anchors
// are clamped.
func InterpolateTimestamp(from, to Moment, seq uint64) uint64 {
	if seq <= from.Sequence || to.Sequence <= from.Sequence || to.Timestamp <= from.Timestamp {
		return from.Timestamp
	}
	if seq >= to.Sequence {
		return to.Timestamp
	}

	return from.Timestamp + mulDiv(to.Timestamp-from.Timestamp, seq-from.Sequence, to.Sequence-from.Sequence)
}

// mulDiv computes a*b/c without overflowing the intermediate product.
func mulDiv(a, b, c uint64) uint64 {
	var v uint256.Int
	v.Mul(uint256.NewInt(a), uint256.NewInt(b))
	v.Div(&v, uint256.NewInt(c))
	return v.Uint64()
}
