// Package memory implements the ability to read and write journal entries
// to memory using a slice.
package memory

import (
	"errors"
	"sync"

	"github.com/ardanlabs/escrow/foundation/escrow/journal"
)

// Memory represents the serialization implementation for reading and storing
// entries in memory using a slice. This implements the journal.Serializer
// interface.
type Memory struct {
	mu      sync.RWMutex
	entries []journal.Entry
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write appends the entry, entries must not go back in time.
func (m *Memory) Write(entry journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l := len(m.entries); l > 0 && entry.Sequence < m.entries[l-1].Sequence {
		return errors.New("entry is out of order")
	}

	m.entries = append(m.entries, entry)

	return nil
}

// Entries returns a copy of the entries written so far.
func (m *Memory) Entries() []journal.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]journal.Entry(nil), m.entries...)
}

// ForEach returns an iterator to walk through all the entries.
func (m *Memory) ForEach() journal.Iterator {
	return &memoryIterator{storage: m}
}

// Reset clears out the journal.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through the entries in memory. This implements the journal.Iterator
// interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current int     // Current entry being iterated over.
	eoj     bool    // Represents the iterator is at the end of the journal.
}

// Next retrieves the next entry.
func (mi *memoryIterator) Next() (journal.Entry, error) {
	if mi.eoj {
		return journal.Entry{}, journal.ErrEndOfJournal
	}

	mi.storage.mu.RLock()
	defer mi.storage.mu.RUnlock()

	if mi.current >= len(mi.storage.entries) {
		mi.eoj = true
		return journal.Entry{}, journal.ErrEndOfJournal
	}

	entry := mi.storage.entries[mi.current]
	mi.current++

	return entry, nil
}
