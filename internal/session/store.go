package session

import (
	"errors"
	"sync"
	"time"

	"school-meal-planner/internal/planner"
)

// ErrSessionNotFound is returned when a completion arrives for a workspace
// that has been swept.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps workspaces in memory, keyed by session ID.
type Store struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
	now        func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		workspaces: make(map[string]*Workspace),
		now:        time.Now,
	}
}

// workspace returns the workspace for id, creating it when create is set.
// Callers must hold s.mu.
func (s *Store) workspace(id string, create bool) (*Workspace, error) {
	w, ok := s.workspaces[id]
	if !ok {
		if !create {
			return nil, ErrSessionNotFound
		}
		w = &Workspace{ID: id}
		s.workspaces[id] = w
	}
	w.UpdatedAt = s.now()
	return w, nil
}

// Snapshot returns the state of the workspace for id, creating an idle one
// for new visitors.
func (s *Store) Snapshot(id string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, _ := s.workspace(id, true)
	return w.Snapshot()
}

// BeginPlan starts a generation for id.
func (s *Store) BeginPlan(id string, req planner.MealRequest) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, _ := s.workspace(id, true)
	return w.BeginPlan(req)
}

// CompletePlan applies a generation outcome. The bool is false when the
// ticket was superseded by a newer generation.
func (s *Store) CompletePlan(id string, t Ticket, text string, genErr error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.workspace(id, false)
	if err != nil {
		return false, err
	}
	return w.CompletePlan(t, text, genErr), nil
}

// BeginLookup starts the ingredient lookup for id.
func (s *Store) BeginLookup(id string) (Ticket, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.workspace(id, false)
	if err != nil {
		return 0, "", ErrLookupNotOffered
	}
	return w.BeginLookup()
}

// CompleteLookup applies a lookup outcome.
func (s *Store) CompleteLookup(id string, t Ticket, info []planner.IngredientInfo, lookupErr error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.workspace(id, false)
	if err != nil {
		return false, err
	}
	return w.CompleteLookup(t, info, lookupErr), nil
}

// Sweep drops workspaces untouched for longer than olderThan and returns how
// many were removed.
func (s *Store) Sweep(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := s.now().Add(-olderThan)
	removed := 0
	for id, w := range s.workspaces {
		if w.UpdatedAt.Before(threshold) {
			delete(s.workspaces, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live workspaces.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}
