package store

import (
	"testing"

	"github.com/xdott/contact-dashboard-api/internal/entity"
)

func TestReplaceAllAndSnapshot(t *testing.T) {
	s := New()
	s.ReplaceAll([]entity.Contact{
		{ID: "c-1", Email: "a@example.com"},
		{ID: "c-2", Email: "b@example.com"},
	})

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}

	snap := s.Snapshot()
	if snap[0].ID != "c-1" || snap[1].ID != "c-2" {
		t.Fatalf("snapshot order wrong: %v, %v", snap[0].ID, snap[1].ID)
	}

	// Mutating the snapshot must not touch the store.
	snap[0].Email = "mutated"
	got, _ := s.Get("c-1")
	if got.Email != "a@example.com" {
		t.Fatalf("snapshot aliased store records")
	}
}

func TestReplaceAllDeduplicatesIDs(t *testing.T) {
	s := New()
	s.ReplaceAll([]entity.Contact{
		{ID: "c-1", Email: "first@example.com"},
		{ID: "c-2"},
		{ID: "c-1", Email: "second@example.com"},
	})

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	got, ok := s.Get("c-1")
	if !ok || got.Email != "first@example.com" {
		t.Fatalf("duplicate id should keep first occurrence, got %+v", got)
	}
}

func TestReplaceOne(t *testing.T) {
	s := New()
	s.ReplaceAll([]entity.Contact{
		{ID: "c-1", Company: "Acme"},
		{ID: "c-2", Company: "Globex"},
		{ID: "c-3", Company: "Initech"},
	})
	before := s.Version()

	ok := s.ReplaceOne("c-2", entity.Contact{ID: "c-2", Company: "Globex GmbH"})
	if !ok {
		t.Fatalf("ReplaceOne reported missing id")
	}
	if s.Version() == before {
		t.Errorf("version did not advance on mutation")
	}

	snap := s.Snapshot()
	if snap[1].ID != "c-2" || snap[1].Company != "Globex GmbH" {
		t.Fatalf("replaced record lost its position: %+v", snap[1])
	}
	if snap[0].Company != "Acme" || snap[2].Company != "Initech" {
		t.Fatalf("neighbouring records changed: %+v", snap)
	}
}

func TestReplaceOneMissingIDLeavesStoreUntouched(t *testing.T) {
	s := New()
	s.ReplaceAll([]entity.Contact{{ID: "c-1"}})
	before := s.Version()

	if s.ReplaceOne("c-404", entity.Contact{ID: "c-404"}) {
		t.Fatalf("ReplaceOne accepted unknown id")
	}
	if s.Version() != before || s.Len() != 1 {
		t.Fatalf("failed replace mutated the store")
	}
}

func TestReplaceOneForcesID(t *testing.T) {
	s := New()
	s.ReplaceAll([]entity.Contact{{ID: "c-1"}})

	// A payload carrying the wrong id must not break the index.
	s.ReplaceOne("c-1", entity.Contact{ID: "something-else", Company: "Acme"})
	got, ok := s.Get("c-1")
	if !ok || got.ID != "c-1" || got.Company != "Acme" {
		t.Fatalf("record id not pinned to the index key: %+v", got)
	}
}
