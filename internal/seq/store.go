// Package seq owns the ordered collection of pasted sequence entries.
//
// Entries are identified by a monotonically assigned integer id. Ids
// are never reused after removal, so an id names the same entry for
// the whole editing session. Insertion order is preserved under every
// mutation, including removal.
package seq

import (
	"fmt"
	"sync"
)

// Entry is one pasted sequence in the editor.
//
// Name may be duplicated across entries; collisions are resolved at
// payload construction, not here. Visible is purely presentational
// and never affects submission eligibility.
type Entry struct {
	ID      int
	Name    string
	Value   string
	Visible bool
}

// Store is the single owner of the sequence entry collection.
//
// Thread-safety: all methods are safe for concurrent use via an
// internal mutex. In practice the session is the only writer.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int
}

// NewStore creates a store seeded with one default entry
// ("Sequence1", id 1, empty, visible). The next assigned id is 2.
func NewStore() *Store {
	return &Store{
		entries: []Entry{{ID: 1, Name: "Sequence1", Visible: true}},
		nextID:  2,
	}
}

// Add appends a new visible, empty entry named after its id and
// returns a copy of it. The id counter only ever increases.
func (s *Store) Add() Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := Entry{
		ID:      s.nextID,
		Name:    fmt.Sprintf("Sequence%d", s.nextID),
		Visible: true,
	}
	s.nextID++
	s.entries = append(s.entries, e)
	return e
}

// Rename replaces the entry's display name. The new name is allowed
// to collide with another entry's name. Returns false if no entry has
// the id.
func (s *Store) Rename(id int, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Name = name
			return true
		}
	}
	return false
}

// SetValue replaces the entry's raw sequence text. The empty string
// is a valid value; such entries are simply excluded from submission.
// Returns false if no entry has the id.
func (s *Store) SetValue(id int, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Value = value
			return true
		}
	}
	return false
}

// ToggleVisible flips the entry's presentation flag and reports the
// new state. Returns false in the second result if no entry has the id.
func (s *Store) ToggleVisible(id int) (visible, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Visible = !s.entries[i].Visible
			return s.entries[i].Visible, true
		}
	}
	return false, false
}

// Remove deletes the entry with the given id. The id is retired and
// never reassigned; remaining entries keep their relative order.
// Returns false if no entry has the id.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns a copy of the collection in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get returns a copy of the entry with the given id.
func (s *Store) Get(id int) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// NextID returns the id the next Add will assign. Useful for tests
// and journaling; never decreases.
func (s *Store) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}
