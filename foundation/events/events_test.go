package events_test

import (
	"encoding/json"
	"testing"

	"github.com/ardanlabs/escrow/foundation/events"
)

func TestSend(t *testing.T) {
	evts := events.New()

	ch := evts.Acquire("client")
	if err := evts.Send(events.Event{Kind: "create_lock", Account: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", Sequence: 7}); err != nil {
		t.Fatalf("Should be able to send the event: %s", err)
	}

	var got events.Event
	if err := json.Unmarshal([]byte(<-ch), &got); err != nil {
		t.Fatalf("Should receive a json event: %s", err)
	}
	if got.Kind != "create_lock" || got.Sequence != 7 {
		t.Fatalf("Should receive the event that was sent: %+v", got)
	}

	if err := evts.Release("client"); err != nil {
		t.Fatalf("Should be able to release the channel: %s", err)
	}
	if _, open := <-ch; open {
		t.Fatalf("Should close the released channel.")
	}
	if err := evts.Release("client"); err == nil {
		t.Fatalf("Should not release an unknown id.")
	}

	evts.Acquire("other")
	evts.Shutdown()
}
