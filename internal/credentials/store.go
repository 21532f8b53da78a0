package credentials

import (
	"sync"
)

type entry struct {
	scope      Scope
	credential Credential
}

// Store maps scopes to credentials with best-match lookup. Safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries []entry
}

// NewStore creates an empty credential store
func NewStore() *Store {
	return &Store{}
}

// Set stores credential for scope, replacing an entry with the same scope
func (s *Store) Set(scope Scope, credential Credential) error {
	if err := checkType(credential); err != nil {
		return err
	}
	scope = scope.canonical()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].scope == scope {
			s.entries[i].credential = credential
			return nil
		}
	}
	s.entries = append(s.entries, entry{scope: scope, credential: credential})
	return nil
}

// Get returns the credential for scope: the exact entry when present,
// otherwise the most specific matching one. Ties go to the earliest stored.
func (s *Store) Get(scope Scope) Credential {
	scope = scope.canonical()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.bestMatch(scope); i >= 0 {
		return s.entries[i].credential
	}
	return nil
}

// Remove deletes the entry Get would return and reports whether one existed
func (s *Store) Remove(scope Scope) bool {
	scope = scope.canonical()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.bestMatch(scope)
	if i < 0 {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true
}

// Clear removes every entry
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Len returns the number of stored entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Scopes returns the stored scopes in insertion order
func (s *Store) Scopes() []Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scopes := make([]Scope, len(s.entries))
	for i, e := range s.entries {
		scopes[i] = e.scope
	}
	return scopes
}

// bestMatch returns the index of the entry for scope, or -1. Caller holds mu.
func (s *Store) bestMatch(scope Scope) int {
	for i, e := range s.entries {
		if e.scope == scope {
			return i
		}
	}

	best, bestScore := -1, -1
	for i, e := range s.entries {
		if score := e.scope.match(scope); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
