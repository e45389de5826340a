package worker_test

import (
	"testing"
	"time"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/curve"
	"github.com/ardanlabs/escrow/foundation/escrow/genesis"
	"github.com/ardanlabs/escrow/foundation/escrow/state"
	"github.com/ardanlabs/escrow/foundation/escrow/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestWorker(t *testing.T) {
	clock := state.NewManualClock(curve.Moment{Timestamp: 2600 * curve.Week, Sequence: 1})

	st, err := state.New(state.Config{
		Genesis: genesis.Genesis{ChainID: 1},
		Clock:   clock,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the escrow: %s", err)
	}

	operator := account.MustAccount("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")

	t.Log("Given the need to checkpoint the escrow in the background.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a checkpoint is signaled.", testID)
		{
			w, err := worker.Run(worker.Config{
				State:    st,
				Operator: operator,
				Schedule: "0 0 0 * * 1",
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould start the worker: %v", failed, testID, err)
			}

			w.SignalCheckpoint()

			deadline := time.Now().Add(5 * time.Second)
			for st.GlobalEpoch() == 0 {
				if time.Now().After(deadline) {
					t.Fatalf("\t%s\tTest %d:\tShould apply the checkpoint.", failed, testID)
				}
				time.Sleep(10 * time.Millisecond)
			}
			t.Logf("\t%s\tTest %d:\tShould apply the checkpoint.", success, testID)

			w.Shutdown()
			t.Logf("\t%s\tTest %d:\tShould shut down.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the schedule is invalid.", testID)
		{
			if _, err := worker.Run(worker.Config{State: st, Operator: operator, Schedule: "every tuesday"}); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the schedule.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the schedule.", success, testID)
		}
	}
}
