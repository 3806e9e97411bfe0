// Package inflight records the cache lines that are being fetched from the
// lower level memory.
package inflight

import (
	"fmt"
)

// An Entry is a cache line on its way from the lower level memory.
type Entry struct {
	Address uint64

	// IsPrefetch is true if the fetch is started by the prefetcher.
	IsPrefetch bool

	// NumDemands counts the demand accesses waiting for the line.
	NumDemands int
}

// Table records cache's requests to the lower level memory.
type Table interface {
	Lookup(addr uint64) (*Entry, bool)
	AddEntry(addr uint64, isPrefetch bool) (*Entry, error)
	RemoveEntry(addr uint64) (Entry, error)
	IsFull() bool
	Len() int
	Reset()
}

// NewTable creates a new table that can hold capacity entries.
func NewTable(capacity int) Table {
	return &tableImpl{
		capacity: capacity,
		entries:  make([]*Entry, 0, capacity),
	}
}

type tableImpl struct {
	capacity int
	entries  []*Entry
}

func (m *tableImpl) Lookup(addr uint64) (*Entry, bool) {
	for _, e := range m.entries {
		if e.Address == addr {
			return e, true
		}
	}

	return nil, false
}

func (m *tableImpl) AddEntry(addr uint64, isPrefetch bool) (*Entry, error) {
	if _, found := m.Lookup(addr); found {
		return nil, fmt.Errorf(
			"address 0x%x is already in the in-flight table", addr)
	}

	if m.IsFull() {
		return nil, fmt.Errorf("trying to add to a full in-flight table")
	}

	entry := &Entry{
		Address:    addr,
		IsPrefetch: isPrefetch,
	}

	if !isPrefetch {
		entry.NumDemands = 1
	}

	m.entries = append(m.entries, entry)

	return entry, nil
}

func (m *tableImpl) RemoveEntry(addr uint64) (Entry, error) {
	for i, e := range m.entries {
		if e.Address == addr {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return *e, nil
		}
	}

	return Entry{}, fmt.Errorf(
		"trying to remove an non-exist entry 0x%x", addr)
}

func (m *tableImpl) IsFull() bool {
	return len(m.entries) >= m.capacity
}

func (m *tableImpl) Len() int {
	return len(m.entries)
}

func (m *tableImpl) Reset() {
	m.entries = m.entries[:0]
}
