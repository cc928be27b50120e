// Package memory provides the in-memory store the engine runs on by
// default. The engine is a single-writer, in-process structure; the
// RWMutex lets balance queries run concurrently while serializing every
// mutation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kanriworks/ledger/internal/errs"
	"github.com/kanriworks/ledger/internal/ledger"
)

// journalKey tracks ordering for journals: sorted asc by (Date, ID).
type journalKey struct {
	Date time.Time
	ID   uuid.UUID
}

// Store is an in-memory implementation of the repository and writer
// interfaces used by the services and the backup codec.
type Store struct {
	mu         sync.RWMutex
	journals   map[uuid.UUID]*ledger.Journal
	keys       []journalKey
	unitOwners map[string]ledger.UnitOwner
	vendors    map[string]ledger.Vendor
	// Idempotency: key -> journal ID
	journalIdem map[string]uuid.UUID
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		journals:    make(map[uuid.UUID]*ledger.Journal),
		unitOwners:  make(map[string]ledger.UnitOwner),
		vendors:     make(map[string]ledger.Vendor),
		journalIdem: make(map[string]uuid.UUID),
	}
}

// Reset drops all stored data. Used by tests and dev tooling.
func (s *Store) Reset() {
	s.mu.Lock()
	s.journals = map[uuid.UUID]*ledger.Journal{}
	s.keys = nil
	s.unitOwners = map[string]ledger.UnitOwner{}
	s.vendors = map[string]ledger.Vendor{}
	s.journalIdem = map[string]uuid.UUID{}
	s.mu.Unlock()
}

// --- Journals ---

// Journals returns all journals ordered by (date, id).
func (s *Store) Journals(_ context.Context) ([]ledger.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Journal, 0, len(s.keys))
	for _, k := range s.keys {
		if j, ok := s.journals[k.ID]; ok {
			out = append(out, cloneJournal(*j))
		}
	}
	return out, nil
}

// JournalByID returns a single journal.
func (s *Store) JournalByID(_ context.Context, id uuid.UUID) (ledger.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.journals[id]
	if !ok {
		return ledger.Journal{}, errs.ErrNotFound
	}
	return cloneJournal(*j), nil
}

// CreateJournal stores a new journal.
func (s *Store) CreateJournal(_ context.Context, j ledger.Journal) (ledger.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.journals[j.ID]; exists {
		return ledger.Journal{}, errs.ErrConflict
	}
	c := cloneJournal(j)
	s.journals[j.ID] = &c
	s.insertKeyLocked(journalKey{Date: j.Date, ID: j.ID})
	return j, nil
}

// UpdateJournal replaces an existing journal by ID.
func (s *Store) UpdateJournal(_ context.Context, j ledger.Journal) (ledger.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.journals[j.ID]
	if !ok {
		return ledger.Journal{}, errs.ErrNotFound
	}
	if !prev.Date.Equal(j.Date) {
		s.removeKeyLocked(prev.Date, j.ID)
		s.insertKeyLocked(journalKey{Date: j.Date, ID: j.ID})
	}
	c := cloneJournal(j)
	s.journals[j.ID] = &c
	return j, nil
}

// DeleteJournal removes a journal by ID.
func (s *Store) DeleteJournal(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journals[id]
	if !ok {
		return errs.ErrNotFound
	}
	s.removeKeyLocked(j.Date, id)
	delete(s.journals, id)
	return nil
}

// ReplaceJournals swaps the whole journal collection, used by backup
// restore.
func (s *Store) ReplaceJournals(_ context.Context, journals []ledger.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journals = make(map[uuid.UUID]*ledger.Journal, len(journals))
	s.keys = s.keys[:0]
	for _, j := range journals {
		if _, dup := s.journals[j.ID]; dup {
			return errs.ErrConflict
		}
		c := cloneJournal(j)
		s.journals[j.ID] = &c
		s.insertKeyLocked(journalKey{Date: j.Date, ID: j.ID})
	}
	return nil
}

// ClearJournals drops all journals and idempotency keys.
func (s *Store) ClearJournals(_ context.Context) error {
	s.mu.Lock()
	s.journals = map[uuid.UUID]*ledger.Journal{}
	s.keys = nil
	s.journalIdem = map[string]uuid.UUID{}
	s.mu.Unlock()
	return nil
}

// --- Auxiliary masters ---

// UnitOwners returns unit owner records ordered by unit number.
func (s *Store) UnitOwners(_ context.Context) ([]ledger.UnitOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.UnitOwner, 0, len(s.unitOwners))
	for _, u := range s.unitOwners {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitNumber < out[j].UnitNumber })
	return out, nil
}

// UpsertUnitOwner merges a unit owner record by unit number.
func (s *Store) UpsertUnitOwner(_ context.Context, u ledger.UnitOwner) error {
	s.mu.Lock()
	s.unitOwners[u.UnitNumber] = u
	s.mu.Unlock()
	return nil
}

// Vendors returns vendor records ordered by code.
func (s *Store) Vendors(_ context.Context) ([]ledger.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// UpsertVendor merges a vendor record by code.
func (s *Store) UpsertVendor(_ context.Context, v ledger.Vendor) error {
	s.mu.Lock()
	s.vendors[v.Code] = v
	s.mu.Unlock()
	return nil
}

// ClearMasters drops all auxiliary master records.
func (s *Store) ClearMasters(_ context.Context) error {
	s.mu.Lock()
	s.unitOwners = map[string]ledger.UnitOwner{}
	s.vendors = map[string]ledger.Vendor{}
	s.mu.Unlock()
	return nil
}

// --- Idempotency ---

// ResolveJournalByIdempotencyKey returns the journal previously created
// under key, if any.
func (s *Store) ResolveJournalByIdempotencyKey(_ context.Context, key string) (ledger.Journal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.journalIdem[key]; ok {
		if j, ok2 := s.journals[id]; ok2 {
			return cloneJournal(*j), true, nil
		}
	}
	return ledger.Journal{}, false, nil
}

// SaveJournalIdempotencyKey records a key -> journal mapping. Only the
// first write for a key sticks.
func (s *Store) SaveJournalIdempotencyKey(_ context.Context, key string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.journalIdem[key]; !exists {
		s.journalIdem[key] = id
	}
	return nil
}

// insertKeyLocked inserts k into the sorted index, keeping order asc by
// (Date, ID). Caller must hold the write lock.
func (s *Store) insertKeyLocked(k journalKey) {
	i := sort.Search(len(s.keys), func(i int) bool {
		if s.keys[i].Date.After(k.Date) {
			return true
		}
		if s.keys[i].Date.Equal(k.Date) {
			return s.keys[i].ID.String() > k.ID.String()
		}
		return false
	})
	s.keys = append(s.keys, journalKey{})
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = k
}

// removeKeyLocked removes the index entry for (date, id). Caller must
// hold the write lock.
func (s *Store) removeKeyLocked(date time.Time, id uuid.UUID) {
	for i, k := range s.keys {
		if k.ID == id && k.Date.Equal(date) {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			return
		}
	}
}

// cloneJournal copies a journal including its detail slice so callers
// never share backing arrays with the store.
func cloneJournal(j ledger.Journal) ledger.Journal {
	details := make([]ledger.JournalDetail, len(j.Details))
	copy(details, j.Details)
	j.Details = details
	j.Metadata = j.Metadata.Clone()
	return j
}
