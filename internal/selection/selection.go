// Package selection tracks which contact ids a user has checked. The set is
// deliberately independent of filtering and pagination: ids stay selected
// while their contacts are hidden by a filter and reappear checked when the
// filter is reverted. Ids that no longer resolve against the record store are
// dropped silently at resolution time, never eagerly.
package selection

import (
	"sort"
	"sync"

	"github.com/xdott/contact-dashboard-api/internal/entity"
)

// Set is a concurrency-safe set of contact ids.
type Set struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewSet creates an empty selection.
func NewSet() *Set {
	return &Set{ids: make(map[string]struct{})}
}

// Add inserts ids into the set. Inserting a present id is a no-op.
func (s *Set) Add(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
}

// Remove deletes ids from the set. Removing an absent id is a no-op.
func (s *Set) Remove(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.ids, id)
	}
}

// Toggle flips membership of a single id and reports the new state.
func (s *Set) Toggle(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports membership of a single id.
func (s *Set) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// AllPresent reports whether every given id is selected. It is the header
// checkbox state for a page: true only when the page is non-empty and fully
// selected.
func (s *Set) AllPresent(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.ids[id]; !ok {
			return false
		}
	}
	return true
}

// Clear empties the set.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
}

// Len returns the number of selected ids, including ids whose contacts are
// currently filtered out or gone from the store.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IDs returns the selected ids in sorted order for deterministic payloads.
func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Resolve maps the selection back to live records, walking the snapshot so
// the result keeps store order. Selected ids with no matching record are
// skipped.
func (s *Set) Resolve(snapshot []entity.Contact) []entity.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved := make([]entity.Contact, 0, len(s.ids))
	for _, record := range snapshot {
		if _, ok := s.ids[record.ID]; ok {
			resolved = append(resolved, record)
		}
	}
	return resolved
}
