// Package disk implements the ability to read and write journal entries to
// a file with one JSON document per line.
package disk

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ardanlabs/escrow/foundation/escrow/journal"
)

// Disk represents the serialization implementation for reading and storing
// entries on disk. This implements the journal.Serializer interface.
type Disk struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// New opens the journal file, creating it and its folder when missing.
func New(path string) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	return &Disk{path: path, file: file}, nil
}

// Close cleanly releases the file.
func (d *Disk) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.file.Close()
}

// Write appends the entry to the end of the file.
func (d *Disk) Write(entry journal.Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if _, err := d.file.Write(append(data, '\n')); err != nil {
		return err
	}

	return d.file.Sync()
}

// Reset truncates the journal to start new.
func (d *Disk) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.file.Close()
	if err := os.Remove(d.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(d.path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	d.file = file

	return nil
}

// ForEach returns an iterator to walk through all the entries from the
// start of the file.
func (d *Disk) ForEach() journal.Iterator {
	file, err := os.Open(d.path)
	if err != nil {
		return &diskIterator{err: err}
	}

	return &diskIterator{file: file, scanner: bufio.NewScanner(file)}
}

// =============================================================================

// diskIterator represents the iteration implementation for walking through
// and reading entries on disk. This implements the journal.Iterator interface.
type diskIterator struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
	err     error
	eoj     bool
}

// Next retrieves the next entry from disk.
func (di *diskIterator) Next() (journal.Entry, error) {
	if di.eoj {
		return journal.Entry{}, journal.ErrEndOfJournal
	}

	if di.file == nil {
		di.eoj = true
		if di.err != nil {
			return journal.Entry{}, di.err
		}
		return journal.Entry{}, journal.ErrEndOfJournal
	}

	if !di.scanner.Scan() {
		di.eoj = true
		di.file.Close()
		di.file = nil

		if err := di.scanner.Err(); err != nil {
			return journal.Entry{}, err
		}
		return journal.Entry{}, journal.ErrEndOfJournal
	}
	di.line++

	var entry journal.Entry
	if err := json.Unmarshal(di.scanner.Bytes(), &entry); err != nil {
		return journal.Entry{}, fmt.Errorf("line %d: %w", di.line, err)
	}

	return entry, nil
}
