package state_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/asset"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/genesis"
	"github.com/ardanlabs/escrow/foundation/escrow/journal/memory"
	"github.com/ardanlabs/escrow/foundation/escrow/state"
	"github.com/holiman/uint256"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	week      = curve.Week
	t0        = 2600 * week
	seq0      = 100
	tolerance = 1_000
)

var (
	admin    = account.MustAccount("0x8d19c8a8D3b6A0d7b81d5C2d5F9bA4bB7e1a4A11")
	treasury = account.MustAccount("0x1E2d3c4B5a69788796A5b4C3d2e1F0a9B8c7D6e5")
	alice    = account.MustAccount("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	bob      = account.MustAccount("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	carol    = account.MustAccount("0x6Fe6CF3c8fF57c58d24BfC869668F48BCbDb3BD9")
	contract = account.MustAccount("0xa988b1866EaBF72B4c53b592c97aAD8e4b9bDCC0")
)

func ether(n uint64) *uint256.Int {
	var v uint256.Int
	v.Mul(uint256.NewInt(n), curve.Unit)
	return &v
}

func mul(v uint256.Int, n uint64) uint256.Int {
	var out uint256.Int
	out.Mul(&v, uint256.NewInt(n))
	return out
}

func add(a, b uint256.Int) uint256.Int {
	return curve.Add(&a, &b)
}

func gen(maxTime uint64) genesis.Genesis {
	balances := make(map[string]string)
	for _, a := range []account.Account{alice, bob, carol, contract} {
		balances[a.String()] = ether(1000).Dec()
	}

	return genesis.Genesis{
		ChainID:          1,
		Admin:            admin.String(),
		PenaltyRecipient: treasury.String(),
		MaxTime:          maxTime,
		Tolerance:        tolerance,
		Balances:         balances,
	}
}

type harness struct {
	t     *testing.T
	s     *state.State
	clock *state.ManualClock
	jrn   *memory.Memory
}

func newHarness(t *testing.T, maxTime uint64) *harness {
	clock := state.NewManualClock(curve.Moment{Timestamp: t0, Sequence: seq0})
	jrn := memory.New()

	s, err := state.New(state.Config{
		Genesis:    gen(maxTime),
		Serializer: jrn,
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the escrow: %s", err)
	}

	return &harness{t: t, s: s, clock: clock, jrn: jrn}
}

// lock approves the escrow and creates the lock.
func (h *harness) lock(a account.Account, amount *uint256.Int, end uint64) {
	if err := h.s.Approve(a, h.s.RetrieveEscrowAccount(), amount); err != nil {
		h.t.Fatalf("Should be able to approve the escrow: %s", err)
	}
	if err := h.s.CreateLock(a, amount, end); err != nil {
		h.t.Fatalf("Should be able to create a lock for %s: %s", a, err)
	}
}

// advance moves time forward by whole weeks, ten blocks per week.
func (h *harness) advance(weeks uint64) curve.Moment {
	return h.clock.Advance(weeks*week, weeks*10)
}

// invariant checks amount and end are zero together for every position.
func (h *harness) invariant() {
	for a, lb := range h.s.RetrieveLocks() {
		if lb.Amount.IsZero() != (lb.End == 0) {
			h.t.Fatalf("Should have amount == 0 <=> end == 0 for %s: %+v", a, lb)
		}
	}
}

func (h *harness) balance(a account.Account) uint256.Int {
	return h.s.BalanceOf(a)
}

func equal(a, b uint256.Int) bool {
	return a.Cmp(&b) == 0
}

// =============================================================================

func TestCreateLock(t *testing.T) {
	type table struct {
		name    string
		amount  *uint256.Int
		end     uint64
		approve bool
		err     error
	}

	tt := []table{
		{name: "zero", amount: uint256.NewInt(0), end: t0 + 10*week, approve: true, err: state.ErrInvalidAmount},
		{name: "past", amount: ether(10), end: t0 - week, approve: true, err: state.ErrInvalidEnd},
		{name: "now", amount: ether(10), end: t0 + week - 1, approve: true, err: state.ErrInvalidEnd},
		{name: "maxtime", amount: ether(10), end: t0 + curve.MaxTime + week, approve: true, err: state.ErrExceedsMaxTime},
		{name: "allowance", amount: ether(10), end: t0 + 10*week, approve: false, err: asset.ErrInsufficientAllowance},
		{name: "balance", amount: ether(2000), end: t0 + 10*week, approve: true, err: asset.ErrInsufficientBalance},
		{name: "valid", amount: ether(10), end: t0 + curve.MaxTime, approve: true},
	}

	t.Log("Given the need to validate new locks.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen creating a %s lock.", testID, tst.name)
			{
				f := func(t *testing.T) {
					h := newHarness(t, 0)
					if tst.approve {
						h.s.Approve(alice, h.s.RetrieveEscrowAccount(), tst.amount)
					}

					err := h.s.CreateLock(alice, tst.amount, tst.end)
					if !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould get the expected error: got %v exp %v", failed, testID, err, tst.err)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected error.", success, testID)

					if tst.err != nil {
						if h.s.GlobalEpoch() != 0 || h.s.LockEnd(alice) != 0 {
							t.Fatalf("\t%s\tTest %d:\tShould leave the escrow unchanged.", failed, testID)
						}
						bal := h.s.RetrieveAssetBalance(alice)
						if !equal(bal, *ether(1000)) {
							t.Fatalf("\t%s\tTest %d:\tShould not move the asset: %s", failed, testID, bal.Dec())
						}
						t.Logf("\t%s\tTest %d:\tShould leave the escrow unchanged.", success, testID)
						return
					}

					if end := h.s.LockEnd(alice); end != t0+52*week {
						t.Fatalf("\t%s\tTest %d:\tShould round the end down to the week: %d", failed, testID, end)
					}
					if h.s.GlobalEpoch() != 1 || h.s.UserPointEpoch(alice) != 1 {
						t.Fatalf("\t%s\tTest %d:\tShould record one global and one user point.", failed, testID)
					}
					if err := h.s.CreateLock(alice, tst.amount, tst.end); !errors.Is(err, state.ErrLockExists) {
						t.Fatalf("\t%s\tTest %d:\tShould not create a second lock: %v", failed, testID, err)
					}
					h.invariant()
					t.Logf("\t%s\tTest %d:\tShould create the lock.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestDecay(t *testing.T) {
	maxTime := 52 * week
	h := newHarness(t, maxTime)

	t.Log("Given the need to decay a full length lock.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen locking 10 units for MAXTIME.", testID)
		{
			h.lock(alice, ether(10), t0+maxTime)

			initial := h.balance(alice)
			gap := curve.SubFloor(ether(10), &initial)
			if gap.Cmp(uint256.NewInt(maxTime)) > 0 {
				t.Fatalf("\t%s\tTest %d:\tShould start close to 10 units: %s", failed, testID, initial.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould start close to 10 units.", success, testID)

			prev := initial
			for range 26 {
				h.advance(1)
				cur := h.balance(alice)
				if cur.Cmp(&prev) >= 0 {
					t.Fatalf("\t%s\tTest %d:\tShould strictly decrease: %s -> %s", failed, testID, prev.Dec(), cur.Dec())
				}
				prev = cur

				total := h.s.TotalSupply()
				if !equal(total, cur) {
					t.Fatalf("\t%s\tTest %d:\tShould match the total supply: %s != %s", failed, testID, total.Dec(), cur.Dec())
				}
			}
			t.Logf("\t%s\tTest %d:\tShould strictly decrease and match the supply.", success, testID)

			half := h.balance(alice)
			gap = curve.SubFloor(ether(5), &half)
			if gap.Cmp(uint256.NewInt(maxTime)) > 0 {
				t.Fatalf("\t%s\tTest %d:\tShould be close to 5 units at half time: %s", failed, testID, half.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould be close to 5 units at half time.", success, testID)

			h.advance(26)
			end := h.balance(alice)
			h.advance(5)
			after := h.balance(alice)
			if !end.IsZero() || !after.IsZero() {
				t.Fatalf("\t%s\tTest %d:\tShould be zero at and after the end: %s %s", failed, testID, end.Dec(), after.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould be zero at and after the end.", success, testID)
		}
	}
}

func TestTotalSupply(t *testing.T) {
	h := newHarness(t, 0)

	t.Log("Given the need to sum the voting weight of every lock.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two participants lock the same amount for the same time.", testID)
		{
			h.lock(alice, ether(100), t0+30*week)
			h.lock(bob, ether(100), t0+30*week)

			for _, weeks := range []uint64{0, 1, 7, 20} {
				h.advance(weeks)
				a := h.balance(alice)
				total := h.s.TotalSupply()
				if !equal(total, mul(a, 2)) {
					t.Fatalf("\t%s\tTest %d:\tShould be twice either balance: %s %s", failed, testID, total.Dec(), a.Dec())
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be twice either balance.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a third lock ends at a different time.", testID)
		{
			h.lock(carol, ether(50), h.clock.Now().Timestamp+3*week)

			for _, weeks := range []uint64{1, 2, 1, 3} {
				h.advance(weeks)
				sum := add(add(h.balance(alice), h.balance(bob)), h.balance(carol))
				total := h.s.TotalSupply()
				if !equal(total, sum) {
					t.Fatalf("\t%s\tTest %d:\tShould equal the sum of balances: %s %s", failed, testID, total.Dec(), sum.Dec())
				}
			}
			t.Logf("\t%s\tTest %d:\tShould equal the sum of balances.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen asking for past totals.", testID)
		{
			now := h.clock.Now()
			for seq := uint64(seq0); seq < now.Sequence; seq += 7 {
				total, err := h.s.TotalSupplyAt(seq)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould get the total at %d: %v", failed, testID, seq, err)
				}

				var sum uint256.Int
				for _, a := range []account.Account{alice, bob, carol} {
					b, err := h.s.BalanceOfAt(a, seq)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould get the balance at %d: %v", failed, testID, seq, err)
					}
					sum = add(sum, b)
				}

				if !equal(total, sum) {
					t.Fatalf("\t%s\tTest %d:\tShould equal the sum of past balances at %d: %s %s", failed, testID, seq, total.Dec(), sum.Dec())
				}
			}
			t.Logf("\t%s\tTest %d:\tShould equal the sum of past balances.", success, testID)
		}
	}
}

func TestBalanceOfAt(t *testing.T) {
	h := newHarness(t, 0)

	var lockPoint curve.Point

	t.Log("Given the need to query past balances by sequence number.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen querying around a single lock.", testID)
		{
			h.lock(alice, ether(100), t0+2*week)
			lockPoint = h.s.GetLastUserPoint(alice)

			if _, err := h.s.BalanceOfAt(alice, seq0); !errors.Is(err, state.ErrOutOfRange) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the current sequence: %v", failed, testID, err)
			}
			if _, err := h.s.TotalSupplyAt(seq0 + 1); !errors.Is(err, state.ErrOutOfRange) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a future sequence: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the current and future sequences.", success, testID)

			h.advance(1)

			before, err := h.s.BalanceOfAt(alice, seq0-1)
			if err != nil || !before.IsZero() {
				t.Fatalf("\t%s\tTest %d:\tShould be zero before the lock: %s %v", failed, testID, before.Dec(), err)
			}
			t.Logf("\t%s\tTest %d:\tShould be zero before the lock.", success, testID)

			at, err := h.s.BalanceOfAt(alice, seq0)
			if err != nil || !equal(at, lockPoint.Bias) {
				t.Fatalf("\t%s\tTest %d:\tShould be the bias at the lock: %s %v", failed, testID, at.Dec(), err)
			}
			t.Logf("\t%s\tTest %d:\tShould be the bias at the lock.", success, testID)

			mid, err := h.s.BalanceOfAt(alice, seq0+5)
			halfWeek := mul(lockPoint.Slope, week/2)
			exp := curve.SubFloor(&lockPoint.Bias, &halfWeek)
			if err != nil || !h.s.RetrieveParams().Within(mid, exp) {
				t.Fatalf("\t%s\tTest %d:\tShould interpolate half a week: %s %s %v", failed, testID, mid.Dec(), exp.Dec(), err)
			}
			t.Logf("\t%s\tTest %d:\tShould interpolate half a week.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the lock expired and was withdrawn.", testID)
		{
			if err := h.s.Withdraw(alice); !errors.Is(err, state.ErrLockNotExpired) {
				t.Fatalf("\t%s\tTest %d:\tShould not withdraw early: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not withdraw early.", success, testID)

			h.advance(2)
			epoch := h.s.GlobalEpoch()
			if err := h.s.Withdraw(alice); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould withdraw: %v", failed, testID, err)
			}
			withdrawSeq := h.clock.Now().Sequence

			if got := h.s.GlobalEpoch(); got != epoch+3 {
				t.Fatalf("\t%s\tTest %d:\tShould record a point for every week crossed: %d -> %d", failed, testID, epoch, got)
			}
			weekly := h.s.PointHistory(epoch + 1)
			if weekly.Timestamp != t0+week || weekly.Sequence != seq0+10 || !equal(weekly.Bias, mul(lockPoint.Slope, week)) {
				t.Fatalf("\t%s\tTest %d:\tShould record the weekly point: %+v", failed, testID, weekly)
			}
			t.Logf("\t%s\tTest %d:\tShould record a point for every week crossed.", success, testID)

			bal := h.s.RetrieveAssetBalance(alice)
			if !equal(bal, *ether(1000)) || h.s.LockEnd(alice) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould return the full amount: %s", failed, testID, bal.Dec())
			}
			if p := h.s.GetLastUserPoint(alice); !p.IsZero() {
				t.Fatalf("\t%s\tTest %d:\tShould record a zero user point: %+v", failed, testID, p)
			}
			h.invariant()
			t.Logf("\t%s\tTest %d:\tShould return the full amount.", success, testID)

			h.advance(1)
			for _, seq := range []uint64{withdrawSeq, withdrawSeq + 5} {
				after, err := h.s.BalanceOfAt(alice, seq)
				if err != nil || !after.IsZero() {
					t.Fatalf("\t%s\tTest %d:\tShould be zero after the withdrawal: %s %v", failed, testID, after.Dec(), err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be zero after the withdrawal.", success, testID)

			if err := h.s.Withdraw(alice); !errors.Is(err, state.ErrNoLock) {
				t.Fatalf("\t%s\tTest %d:\tShould not withdraw twice: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not withdraw twice.", success, testID)
		}
	}
}

func TestBalanceOfAtSharedSequence(t *testing.T) {
	h := newHarness(t, 0)
	params := h.s.RetrieveParams()
	k := params.Slope(ether(100))

	t.Log("Given the need to query a sequence followed by several weekly points.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen weeks pass with a single new block.", testID)
		{
			h.lock(alice, ether(100), t0+10*week)
			lockPoint := h.s.GetLastUserPoint(alice)

			h.clock.Advance(3*week, 1)
			if err := h.s.Checkpoint(carol); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould checkpoint: %v", failed, testID, err)
			}
			if p := h.s.PointHistory(2); p.Sequence != seq0 || p.Timestamp != t0+week {
				t.Fatalf("\t%s\tTest %d:\tShould carry the lock sequence on the weekly points: %+v", failed, testID, p)
			}
			t.Logf("\t%s\tTest %d:\tShould carry the lock sequence on the weekly points.", success, testID)

			h.clock.Advance(0, 1)

			at, err := h.s.BalanceOfAt(alice, seq0)
			if err != nil || !params.Within(at, lockPoint.Bias) {
				t.Fatalf("\t%s\tTest %d:\tShould read the balance at the lock: %s %s %v", failed, testID, at.Dec(), lockPoint.Bias.Dec(), err)
			}
			total, err := h.s.TotalSupplyAt(seq0)
			if err != nil || !params.Within(total, lockPoint.Bias) {
				t.Fatalf("\t%s\tTest %d:\tShould read the total at the lock: %s %s %v", failed, testID, total.Dec(), lockPoint.Bias.Dec(), err)
			}
			t.Logf("\t%s\tTest %d:\tShould read the values at the lock, not weeks later.", success, testID)

			after, err := h.s.BalanceOfAt(alice, seq0+1)
			exp := mul(k, 7*week)
			if err != nil || !params.Within(after, exp) {
				t.Fatalf("\t%s\tTest %d:\tShould read the balance at the checkpoint: %s %s %v", failed, testID, after.Dec(), exp.Dec(), err)
			}
			t.Logf("\t%s\tTest %d:\tShould read the balance at the checkpoint.", success, testID)
		}
	}
}

func TestAccountSpelling(t *testing.T) {
	h := newHarness(t, 0)

	lower := func(a account.Account) account.Account {
		return account.Account(strings.ToLower(a.String()))
	}
	upper := func(a account.Account) account.Account {
		return account.Account("0x" + strings.ToUpper(a.String()[2:]))
	}

	t.Log("Given the need to treat every spelling of an address as one participant.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the escrow account is spelled in lower case.", testID)
		{
			if err := h.s.Approve(alice, lower(h.s.RetrieveEscrowAccount()), ether(100)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould approve: %v", failed, testID, err)
			}
			if err := h.s.CreateLock(alice, ether(100), t0+20*week); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould lock with the approval: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould lock with the approval.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a delegatee is spelled in upper case.", testID)
		{
			h.lock(bob, ether(100), t0+10*week)
			if err := h.s.Delegate(lower(bob), upper(alice)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould delegate: %v", failed, testID, err)
			}
			if lb := h.s.Locked(bob); lb.Delegatee != alice {
				t.Fatalf("\t%s\tTest %d:\tShould record the checksum delegatee: %s", failed, testID, lb.Delegatee)
			}
			if lb := h.s.Locked(alice); !equal(lb.Delegated, *ether(100)) {
				t.Fatalf("\t%s\tTest %d:\tShould credit the delegatee: %s", failed, testID, lb.Delegated.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould record the checksum delegatee.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a blocked account is spelled in lower case.", testID)
		{
			h.lock(contract, ether(10), t0+10*week)
			if err := h.s.Block(admin, lower(contract)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould block: %v", failed, testID, err)
			}
			if !h.s.IsBlocked(contract) {
				t.Fatalf("\t%s\tTest %d:\tShould block the checksum account.", failed, testID)
			}
			if err := h.s.IncreaseAmount(contract, ether(1)); !errors.Is(err, state.ErrBlocked) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the blocked account: %v", failed, testID, err)
			}
			if err := h.s.IncreaseAmount(upper(contract), ether(1)); !errors.Is(err, state.ErrBlocked) {
				t.Fatalf("\t%s\tTest %d:\tShould reject any spelling of the blocked account: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject every spelling of the blocked account.", success, testID)
		}
	}
}

func TestIncrease(t *testing.T) {
	h := newHarness(t, 0)

	t.Log("Given the need to grow an existing lock.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen there is no lock.", testID)
		{
			if err := h.s.IncreaseAmount(alice, ether(1)); !errors.Is(err, state.ErrNoLock) {
				t.Fatalf("\t%s\tTest %d:\tShould fail increasing the amount: %v", failed, testID, err)
			}
			if err := h.s.IncreaseUnlockTime(alice, t0+5*week); !errors.Is(err, state.ErrNoLock) {
				t.Fatalf("\t%s\tTest %d:\tShould fail increasing the time: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fail with NoLock.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen increasing the amount.", testID)
		{
			h.lock(alice, ether(10), t0+10*week)
			h.advance(1)

			if err := h.s.IncreaseAmount(alice, uint256.NewInt(0)); !errors.Is(err, state.ErrInvalidAmount) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a zero amount: %v", failed, testID, err)
			}

			h.s.Approve(alice, h.s.RetrieveEscrowAccount(), ether(30))
			if err := h.s.IncreaseAmount(alice, ether(30)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould increase the amount: %v", failed, testID, err)
			}

			params := h.s.RetrieveParams()
			exp := params.Bias(ether(40), t0+10*week, t0+week)
			if got := h.balance(alice); !equal(got, exp) {
				t.Fatalf("\t%s\tTest %d:\tShould rederive the bias from the new amount: %s %s", failed, testID, got.Dec(), exp.Dec())
			}
			slope := params.Slope(ether(40))
			if got := h.s.SlopeChanges(t0 + 10*week); !equal(got, slope) {
				t.Fatalf("\t%s\tTest %d:\tShould schedule the new slope: %s %s", failed, testID, got.Dec(), slope.Dec())
			}
			h.invariant()
			t.Logf("\t%s\tTest %d:\tShould rederive the bias and slope.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen increasing the unlock time.", testID)
		{
			if err := h.s.IncreaseUnlockTime(alice, t0+10*week+week-1); !errors.Is(err, state.ErrInvalidEnd) {
				t.Fatalf("\t%s\tTest %d:\tShould require a later end: %v", failed, testID, err)
			}
			if err := h.s.IncreaseUnlockTime(alice, t0+week+curve.MaxTime+week); !errors.Is(err, state.ErrExceedsMaxTime) {
				t.Fatalf("\t%s\tTest %d:\tShould not exceed max time: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject bad ends.", success, testID)

			if err := h.s.IncreaseUnlockTime(alice, t0+20*week); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould extend the lock: %v", failed, testID, err)
			}

			params := h.s.RetrieveParams()
			slope := params.Slope(ether(40))
			moved := h.s.SlopeChanges(t0 + 10*week)
			if got := h.s.SlopeChanges(t0 + 20*week); !moved.IsZero() || !equal(got, slope) {
				t.Fatalf("\t%s\tTest %d:\tShould move the schedule entry: %s %s", failed, testID, moved.Dec(), got.Dec())
			}
			exp := params.Bias(ether(40), t0+20*week, t0+week)
			if got := h.balance(alice); !equal(got, exp) {
				t.Fatalf("\t%s\tTest %d:\tShould rederive the bias for the new end: %s %s", failed, testID, got.Dec(), exp.Dec())
			}
			t.Logf("\t%s\tTest %d:\tShould move the schedule and rederive the bias.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the lock expired.", testID)
		{
			h.advance(20)
			if err := h.s.IncreaseAmount(alice, ether(1)); !errors.Is(err, state.ErrLockExpired) {
				t.Fatalf("\t%s\tTest %d:\tShould fail increasing the amount: %v", failed, testID, err)
			}
			if err := h.s.IncreaseUnlockTime(alice, h.clock.Now().Timestamp+5*week); !errors.Is(err, state.ErrLockExpired) {
				t.Fatalf("\t%s\tTest %d:\tShould fail increasing the time: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fail with LockExpired.", success, testID)
		}
	}
}

func TestCheckpoint(t *testing.T) {
	h := newHarness(t, 0)

	t.Log("Given the need to keep the global history dense.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen no week boundary is crossed.", testID)
		{
			h.s.Checkpoint(bob)
			h.clock.Advance(100, 1)
			h.s.Checkpoint(bob)

			if got := h.s.GlobalEpoch(); got != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould add one epoch per call: %d", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould add one epoch per call.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen three week boundaries are crossed.", testID)
		{
			h.clock.Advance(3*week, 30)
			h.s.Checkpoint(bob)

			if got := h.s.GlobalEpoch(); got != 6 {
				t.Fatalf("\t%s\tTest %d:\tShould add a point per boundary: %d", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould add a point per boundary.", success, testID)
		}
	}
}
