// Package rosterstore is an in-memory roster of named staff defaults
// (role and target shift count), independent of any particular schedule
// run. It exists so a CLI or service can build up a roster once and reuse
// it across many scheduling requests.
package rosterstore

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/clinicrota/oncallgen/internal/schederr"
	"github.com/clinicrota/oncallgen/internal/staff"
)

// DefaultTargetShifts mirrors the roster default carried over from the
// original tool's staff model.
const DefaultTargetShifts = 7

// Entry is one roster member, addressable by a stable ID independent of
// name (names may be renamed without losing history).
type Entry struct {
	ID                  string
	Name                string
	Role                staff.Role
	DefaultTargetShifts int
}

// Store is a concurrency-safe, in-memory keyed collection of roster
// entries. The zero value is not usable; construct with New.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// List returns every entry, ordered by name for deterministic display.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, schederr.Newf(schederr.InvalidRange, "staff member %q not found", id)
	}
	return e, nil
}

// Create adds a new roster entry after checking the role is valid and the
// name is not already taken. If targetShifts is 0, DefaultTargetShifts is
// used.
func (s *Store) Create(name, role string, targetShifts int) (Entry, error) {
	r, err := staff.ParseRole(role)
	if err != nil {
		return Entry{}, err
	}
	if targetShifts == 0 {
		targetShifts = DefaultTargetShifts
	}
	if targetShifts < 1 {
		return Entry{}, schederr.Newf(schederr.InvalidRange, "default_target_shifts must be >= 1, got %d", targetShifts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.Name == name {
			return Entry{}, schederr.Newf(schederr.InvalidRange, "staff member with name %q already exists", name)
		}
	}

	entry := Entry{
		ID:                  uuid.NewString(),
		Name:                name,
		Role:                r,
		DefaultTargetShifts: targetShifts,
	}
	s.entries[entry.ID] = entry
	return entry, nil
}

// Restore inserts an entry under its existing ID, for callers rebuilding a
// Store from a persisted snapshot. The same name-uniqueness and
// target-shifts rules as Create apply; an empty ID or a duplicate ID is
// rejected.
func (s *Store) Restore(e Entry) error {
	if e.ID == "" {
		return schederr.New(schederr.InvalidRange, "entry has no id")
	}
	if e.DefaultTargetShifts == 0 {
		e.DefaultTargetShifts = DefaultTargetShifts
	}
	if e.DefaultTargetShifts < 1 {
		return schederr.Newf(schederr.InvalidRange, "default_target_shifts must be >= 1, got %d", e.DefaultTargetShifts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[e.ID]; ok {
		return schederr.Newf(schederr.InvalidRange, "staff member %q already exists", e.ID)
	}
	for _, existing := range s.entries {
		if existing.Name == e.Name {
			return schederr.Newf(schederr.InvalidRange, "staff member with name %q already exists", e.Name)
		}
	}

	s.entries[e.ID] = e
	return nil
}

// Update applies the given non-nil fields to the entry with id. A nil
// field leaves the corresponding value unchanged.
func (s *Store) Update(id string, name *string, role *string, targetShifts *int) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, schederr.Newf(schederr.InvalidRange, "staff member %q not found", id)
	}

	if name != nil {
		for otherID, e := range s.entries {
			if otherID != id && e.Name == *name {
				return Entry{}, schederr.Newf(schederr.InvalidRange, "staff member with name %q already exists", *name)
			}
		}
		entry.Name = *name
	}
	if role != nil {
		r, err := staff.ParseRole(*role)
		if err != nil {
			return Entry{}, err
		}
		entry.Role = r
	}
	if targetShifts != nil {
		if *targetShifts < 1 {
			return Entry{}, schederr.Newf(schederr.InvalidRange, "default_target_shifts must be >= 1, got %d", *targetShifts)
		}
		entry.DefaultTargetShifts = *targetShifts
	}

	s.entries[id] = entry
	return entry, nil
}

// Delete removes the entry with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return schederr.Newf(schederr.InvalidRange, "staff member %q not found", id)
	}
	delete(s.entries, id)
	return nil
}

// AsStaffInputs converts every roster entry into a scheduler-ready staff
// input, carrying no unavailability (the roster has none recorded).
func AsStaffInputs(entries []Entry) []StaffInput {
	out := make([]StaffInput, len(entries))
	for i, e := range entries {
		out[i] = StaffInput{Name: e.Name, Role: e.Role.String(), TargetShifts: e.DefaultTargetShifts}
	}
	return out
}

// StaffInput mirrors scheduler.StaffInput's shape so this package does not
// need to import the scheduler package just to produce request fodder.
type StaffInput struct {
	Name         string
	Role         string
	TargetShifts int
}
