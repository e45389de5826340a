package curve_test

import (
	"testing"

	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/holiman/uint256"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func ether(n uint64) *uint256.Int {
	var v uint256.Int
	v.Mul(uint256.NewInt(n), curve.Unit)
	return &v
}

func TestLine(t *testing.T) {
	params := curve.DefaultParams()

	t.Log("Given the need to compute the decay of a full length lock.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen locking 10 units for MAXTIME.", testID)
		{
			amount := ether(10)
			slope := params.Slope(amount)
			bias := params.Bias(amount, curve.MaxTime, 0)

			var exp uint256.Int
			exp.Div(amount, uint256.NewInt(curve.MaxTime))
			if slope.Cmp(&exp) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould get slope amount/MAXTIME: got %s exp %s", failed, testID, slope.Dec(), exp.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould get slope amount/MAXTIME.", success, testID)

			diff := curve.SubFloor(amount, &bias)
			if diff.Cmp(uint256.NewInt(curve.MaxTime)) > 0 {
				t.Fatalf("\t%s\tTest %d:\tShould get a bias close to the amount: %s", failed, testID, bias.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould get a bias close to the amount.", success, testID)

			p := curve.Point{Bias: bias, Slope: slope}
			half := p.ValueAt(curve.MaxTime / 2)
			gap := curve.SubFloor(ether(5), &half)
			if gap.Cmp(uint256.NewInt(curve.MaxTime)) > 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have half the value at half the duration: %s", failed, testID, half.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould have half the value at half the duration.", success, testID)

			end := p.ValueAt(curve.MaxTime)
			after := p.ValueAt(curve.MaxTime * 2)
			if !end.IsZero() || !after.IsZero() {
				t.Fatalf("\t%s\tTest %d:\tShould be zero at and after the end: %s %s", failed, testID, end.Dec(), after.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould be zero at and after the end.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the lock already ended.", testID)
		{
			bias := params.Bias(ether(10), 100, 200)
			if !bias.IsZero() {
				t.Fatalf("\t%s\tTest %d:\tShould get a zero bias: %s", failed, testID, bias.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould get a zero bias.", success, testID)
		}
	}
}

func TestDecay(t *testing.T) {
	p := curve.Point{
		Bias:      *uint256.NewInt(1000),
		Slope:     *uint256.NewInt(10),
		Timestamp: 100,
		Sequence:  1,
	}

	t.Log("Given the need to move a point forward in time.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen decaying part of the line.", testID)
		{
			d := p.Decay(150)
			if d.Bias.Uint64() != 500 || d.Slope.Uint64() != 10 || d.Timestamp != 150 {
				t.Fatalf("\t%s\tTest %d:\tShould get bias 500 at 150: %+v", failed, testID, d)
			}
			t.Logf("\t%s\tTest %d:\tShould get bias 500 at 150.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen decaying past zero.", testID)
		{
			d := p.Decay(500)
			if !d.IsZero() {
				t.Fatalf("\t%s\tTest %d:\tShould clamp bias and slope to zero: %+v", failed, testID, d)
			}
			t.Logf("\t%s\tTest %d:\tShould clamp bias and slope to zero.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen asking for a time before the point.", testID)
		{
			v := p.ValueAt(50)
			if v.Uint64() != 1000 {
				t.Fatalf("\t%s\tTest %d:\tShould get back the bias: %s", failed, testID, v.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould get back the bias.", success, testID)
		}
	}
}

func TestInterpolate(t *testing.T) {
	from := curve.Moment{Timestamp: 1000, Sequence: 10}
	to := curve.Moment{Timestamp: 2000, Sequence: 20}

	type table struct {
		name string
		ts   uint64
		seq  uint64
	}

	tt := []table{
		{name: "start", ts: 1000, seq: 10},
		{name: "middle", ts: 1500, seq: 15},
		{name: "floor", ts: 1550, seq: 15},
		{name: "end", ts: 2000, seq: 20},
		{name: "after", ts: 3000, seq: 20},
	}

	t.Log("Given the need to correlate timestamps and sequence numbers.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen interpolating the %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					seq := curve.InterpolateSequence(from, to, tst.ts)
					if seq != tst.seq {
						t.Fatalf("\t%s\tTest %d:\tShould get sequence %d: got %d", failed, testID, tst.seq, seq)
					}
					t.Logf("\t%s\tTest %d:\tShould get sequence %d.", success, testID, tst.seq)
				}

				t.Run(tst.name, f)
			}
		}

		testID := len(tt)
		t.Logf("\tTest %d:\tWhen estimating a timestamp.", testID)
		{
			if ts := curve.InterpolateTimestamp(from, to, 15); ts != 1500 {
				t.Fatalf("\t%s\tTest %d:\tShould get timestamp 1500: got %d", failed, testID, ts)
			}
			if ts := curve.InterpolateTimestamp(from, from, 15); ts != 1000 {
				t.Fatalf("\t%s\tTest %d:\tShould use the anchor when no time passed: got %d", failed, testID, ts)
			}
			t.Logf("\t%s\tTest %d:\tShould estimate timestamps.", success, testID)
		}
	}
}

func TestFloor(t *testing.T) {
	params := curve.DefaultParams()

	if got := params.Floor(curve.Week*3 + 5); got != curve.Week*3 {
		t.Fatalf("Should round down to the epoch boundary: got %d", got)
	}
	if err := (curve.Params{}).Validate(); err == nil {
		t.Fatalf("Should reject a zero epoch.")
	}
	if err := params.Validate(); err != nil {
		t.Fatalf("Should accept the default params: %s", err)
	}
}

func TestWithin(t *testing.T) {
	params := curve.DefaultParams()

	a := *ether(1)
	b := curve.Add(&a, uint256.NewInt(5))
	if params.Within(a, b) || !params.Within(a, a) {
		t.Fatalf("Should compare exactly without a tolerance.")
	}

	params.Tolerance = 5
	if !params.Within(a, b) || !params.Within(b, a) {
		t.Fatalf("Should accept a difference up to the tolerance.")
	}

	c := curve.Add(&b, uint256.NewInt(1))
	if params.Within(a, c) || params.Within(c, a) {
		t.Fatalf("Should reject a difference past the tolerance.")
	}
}
