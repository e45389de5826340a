// Package events allows for the registering and receiving of escrow events.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Event describes an operation the escrow applied.
type Event struct {
	Kind      string `json:"kind"`
	Account   string `json:"account"`
	Target    string `json:"target,omitempty"`
	Amount    string `json:"amount,omitempty"`
	End       uint64 `json:"end,omitempty"`
	Sequence  uint64 `json:"sequence"`
	Timestamp uint64 `json:"timestamp"`
}

// Events maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Events struct {
	m  map[string]chan string
	mu sync.RWMutex
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used
// to receive events.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	// A message is dropped if the websocket receiver is not ready, this
	// buffer gives a slow writer room to catch up.
	const messageBuffer = 100

	evt.m[id] = make(chan string, messageBuffer)
	return evt.m[id]
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Send encodes the event and signals it to every registered channel. Send
// will not block waiting for a receiver on any given channel.
func (evt *Events) Send(e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", e.Kind, err)
	}
	msg := string(data)

	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- msg:
		default:
		}
	}

	return nil
}
