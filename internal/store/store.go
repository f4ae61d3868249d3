// Package store holds the per-session cache of the current page of records
// for one entity type. State changes go through the defined actions only and
// each action is applied atomically.
package store

import (
	"sync"

	"github.com/edutrack-app/edutrack-bff/internal/models"
)

// Store caches records for one entity type together with loading and error
// flags. It is safe for concurrent use; every action applies in full or not
// at all.
type Store struct {
	mu         sync.Mutex
	items      []models.Record
	isLoading  bool
	err        string
	current    models.Record
	issuedSeq  uint64
	appliedSeq uint64
}

// Snapshot is a consistent copy of the store state.
type Snapshot struct {
	Items     []models.Record
	IsLoading bool
	Error     string
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// NextSeq reserves a sequence number for a list request about to be issued.
// Responses commit with the same number so that late arrivals from older
// requests can be discarded.
func (s *Store) NextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuedSeq++
	return s.issuedSeq
}

// SetLoading flips the loading flag.
func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = v
}

// SetEntities replaces the item list with a completed list() result, clears
// the error and drops the loading flag. A response older than the newest one
// already applied is discarded; the return value reports whether the result
// was applied.
func (s *Store) SetEntities(items []models.Record, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.appliedSeq {
		return false
	}
	s.appliedSeq = seq
	s.items = make([]models.Record, len(items))
	for i, item := range items {
		s.items[i] = item.Clone()
	}
	s.err = ""
	s.isLoading = false
	return true
}

// AddEntity appends a persisted record. The list is not re-sorted locally;
// the next refetch restores server order.
func (s *Store) AddEntity(rec models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, rec.Clone())
}

// UpdateEntity replaces the item with a matching Id. A missing match is a
// silent no-op: the item was removed by a concurrent delete.
func (s *Store) UpdateEntity(rec models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := rec.ID()
	for i, item := range s.items {
		if item.ID() == id {
			s.items[i] = rec.Clone()
			return
		}
	}
}

// RemoveEntity filters out the item with the matching Id; no-op if absent.
func (s *Store) RemoveEntity(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID() != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
}

// SetError records a failed list() call, leaving the previous items visible.
// Errors from requests older than an applied response are discarded.
func (s *Store) SetError(msg string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.appliedSeq {
		return false
	}
	s.err = msg
	s.isLoading = false
	return true
}

// SetCurrent records the entity selected for editing. This is a
// cross-component signal only; controllers keep their own draft copy.
func (s *Store) SetCurrent(rec models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = rec.Clone()
}

// Current returns the entity selected for editing, or nil.
func (s *Store) Current() models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Find returns a copy of the item with the given Id.
func (s *Store) Find(id int) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID() == id {
			return item.Clone(), true
		}
	}
	return nil, false
}

// Snapshot returns a consistent copy of items and flags.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.Record, len(s.items))
	for i, item := range s.items {
		items[i] = item.Clone()
	}
	return Snapshot{Items: items, IsLoading: s.isLoading, Error: s.err}
}

// Len reports the number of cached items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
