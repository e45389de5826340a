// Package checkpoint maintains the append-only point histories of decay lines
// and the schedule of slope changes that are due at future timestamps.
package checkpoint

import (
	"sort"

	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/google/btree"
	"github.com/holiman/uint256"
)

const defaultTreeDegree = 2

// Change is the amount of slope that expires from a line at a timestamp.
type Change struct {
	Timestamp uint64
	Slope     uint256.Int
}

func lessChange(a, b Change) bool {
	return a.Timestamp < b.Timestamp
}

// =============================================================================

// Line maintains the point history and slope schedule for one decay line.
// Index 0 of the history is a zero sentinel so the epoch of a line is the
// index of its latest point. A Line is not safe for concurrent use; the
// owner serializes access.
type Line struct {
	points   []curve.Point
	schedule *btree.BTreeG[Change]
	consume  bool
}

// NewGlobal constructs the line that tracks the sum of all locks. Schedule
// entries are consumed as Advance crosses them.
func NewGlobal() *Line {
	return &Line{
		points:   []curve.Point{{}},
		schedule: btree.NewG(defaultTreeDegree, lessChange),
		consume:  true,
	}
}

// NewUser constructs a participant line. Schedule entries are never
// consumed so past points can be replayed exactly.
func NewUser() *Line {
	return &Line{
		points:   []curve.Point{{}},
		schedule: btree.NewG(defaultTreeDegree, lessChange),
	}
}

// Record appends the point to the history and returns the new epoch.
func (l *Line) Record(p curve.Point) uint64 {
	l.points = append(l.points, p)
	return uint64(len(l.points) - 1)
}

// Epoch returns the index of the latest recorded point.
func (l *Line) Epoch() uint64 {
	return uint64(len(l.points) - 1)
}

// Last returns the latest recorded point, the zero sentinel if none.
func (l *Line) Last() curve.Point {
	return l.points[len(l.points)-1]
}

// Point returns the point recorded at the specified epoch.
func (l *Line) Point(epoch uint64) (curve.Point, bool) {
	if epoch >= uint64(len(l.points)) {
		return curve.Point{}, false
	}
	return l.points[epoch], true
}

// =============================================================================

// ScheduleExpiry adds slope to the amount leaving the line at ts.
func (l *Line) ScheduleExpiry(ts uint64, slope *uint256.Int) {
	if slope.IsZero() {
		return
	}

	c, _ := l.schedule.Get(Change{Timestamp: ts})
	c.Timestamp = ts
	c.Slope.Add(&c.Slope, slope)
	l.schedule.ReplaceOrInsert(c)
}

// CancelExpiry removes slope from the amount leaving the line at ts. An entry
// that reaches zero is removed.
func (l *Line) CancelExpiry(ts uint64, slope *uint256.Int) {
	c, found := l.schedule.Get(Change{Timestamp: ts})
	if !found {
		return
	}

	c.Slope = curve.SubFloor(&c.Slope, slope)
	if c.Slope.IsZero() {
		l.schedule.Delete(c)
		return
	}
	l.schedule.ReplaceOrInsert(c)
}

// SlopeChange returns the slope scheduled to leave the line at ts.
func (l *Line) SlopeChange(ts uint64) uint256.Int {
	c, _ := l.schedule.Get(Change{Timestamp: ts})
	return c.Slope
}

// Pending returns the number of outstanding schedule entries.
func (l *Line) Pending() int {
	return l.schedule.Len()
}

// Project replays the line from p to t, applying every scheduled slope
// change in (p.Timestamp, t], and returns the resulting point at t.
func (l *Line) Project(p curve.Point, t uint64) curve.Point {
	if t <= p.Timestamp {
		return p
	}

	l.schedule.AscendRange(Change{Timestamp: p.Timestamp + 1}, Change{Timestamp: t + 1}, func(c Change) bool {
		p = p.Decay(c.Timestamp)
		p.Slope = curve.SubFloor(&p.Slope, &c.Slope)
		return true
	})

	return p.Decay(t)
}

// ValueAt returns the value of the line at t starting from p.
func (l *Line) ValueAt(p curve.Point, t uint64) uint256.Int {
	return l.Project(p, t).Bias
}

// =============================================================================

// Advance replays the line from its latest point up to now one epoch boundary
// at a time. At every boundary it applies the slope due, decays the bias and
// records an intermediate point whose sequence is interpolated between the
// latest point and now. The point for now itself is returned without being
// recorded so the caller can adjust it before calling Record.
func (l *Line) Advance(params curve.Params, now curve.Moment) curve.Point {
	last := l.Last()
	if len(l.points) == 1 {
		last = curve.Point{Timestamp: now.Timestamp, Sequence: now.Sequence}
	}
	if now.Timestamp < last.Timestamp {
		now.Timestamp = last.Timestamp
	}

	anchor := last.At()
	ti := params.Floor(last.Timestamp)

	for {
		ti += params.Epoch
		if ti >= now.Timestamp {
			ti = now.Timestamp
		}

		last = last.Decay(ti)

		due, found := l.schedule.Get(Change{Timestamp: ti})
		if found {
			last.Slope = curve.SubFloor(&last.Slope, &due.Slope)
			if l.consume {
				l.schedule.Delete(due)
			}
		}

		if ti == now.Timestamp {
			last.Sequence = now.Sequence
			return last
		}

		last.Sequence = curve.InterpolateSequence(anchor, now, ti)
		if l.consume {
			l.points = append(l.points, last)
		}
	}
}

// =============================================================================

// FindBefore performs a binary search for the last point whose sequence is
// less than or equal to seq. The zero sentinel is returned at epoch 0 when
// no recorded point qualifies.
func (l *Line) FindBefore(seq uint64) (uint64, curve.Point) {
	idx := sort.Search(len(l.points)-1, func(i int) bool {
		return l.points[i+1].Sequence > seq
	})

	return uint64(idx), l.points[idx]
}

// FindAt performs a binary search for the last point taken at or before
// both seq and ts. Histories only move forward on both axes.
func (l *Line) FindAt(seq uint64, ts uint64) (uint64, curve.Point) {
	idx := sort.Search(len(l.points)-1, func(i int) bool {
		p := l.points[i+1]
		return p.Sequence > seq || p.Timestamp > ts
	})

	return uint64(idx), l.points[idx]
}
