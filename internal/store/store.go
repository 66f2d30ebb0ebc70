// Package store holds the in-memory contact record store. The store is the
// only shared mutable resource in a dashboard session and has exactly two
// mutation entry points: ReplaceAll for a full refresh and ReplaceOne for a
// confirmed single-record edit. All reads work on copies, so derived views
// (filtering, pagination, export) can never mutate the underlying records.
package store

import (
	"sync"

	"github.com/xdott/contact-dashboard-api/internal/entity"
)

// Store is an ordered, id-indexed collection of contacts.
type Store struct {
	mu      sync.RWMutex
	records []entity.Contact
	index   map[string]int
	version uint64
}

// New creates an empty store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// ReplaceAll swaps the full record set, last write wins. Records with a
// duplicate id keep their first occurrence so the id-uniqueness invariant
// holds regardless of what upstream returned.
func (s *Store) ReplaceAll(records []entity.Contact) {
	next := make([]entity.Contact, 0, len(records))
	index := make(map[string]int, len(records))
	for _, record := range records {
		if _, dup := index[record.ID]; dup {
			continue
		}
		index[record.ID] = len(next)
		next = append(next, record)
	}

	s.mu.Lock()
	s.records = next
	s.index = index
	s.version++
	s.mu.Unlock()
}

// ReplaceOne atomically swaps the record with the given id for the provided
// one. It reports false when the id is not present; the store is then left
// untouched. The record keeps its position in the order.
func (s *Store) ReplaceOne(id string, record entity.Contact) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return false
	}
	record.ID = id
	s.records[pos] = record
	s.version++
	return true
}

// Snapshot returns a copy of the records in store order.
func (s *Store) Snapshot() []entity.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Contact, len(s.records))
	copy(out, s.records)
	return out
}

// Get looks up a single record by id.
func (s *Store) Get(id string) (entity.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return entity.Contact{}, false
	}
	return s.records[pos], true
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version increments on every mutation; derived views can use it to detect
// staleness cheaply.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
