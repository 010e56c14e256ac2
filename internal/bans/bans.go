// Package bans manages the list of banned chat visitors. Unbanning keeps
// the record for audit; deleting removes it entirely.
package bans

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrIdentifierRequired is returned when a ban names no visitor.
	ErrIdentifierRequired = errors.New("Visitor identifier is required.")

	// ErrNotFound is returned when no ban record has the given id.
	ErrNotFound = errors.New("ban record not found")
)

// BannedVisitor is one ban record.
type BannedVisitor struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Active     bool   `json:"active"`
	Reason     string `json:"reason,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// BanRequest is the creation payload.
type BanRequest struct {
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
}

// List is the full ban list returned by every endpoint.
type List struct {
	Visitors []BannedVisitor `json:"visitors"`
}

// Store is the in-memory ban store behind the development API.
type Store struct {
	mu      sync.RWMutex
	records map[string]*BannedVisitor
	now     func() time.Time
}

// NewStore creates an empty ban store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*BannedVisitor),
		now:     time.Now,
	}
}

// WithClock overrides the timestamp source for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Store) list() List {
	visitors := make([]BannedVisitor, 0, len(s.records))
	for _, record := range s.records {
		visitors = append(visitors, *record)
	}
	sort.Slice(visitors, func(i, j int) bool {
		if visitors[i].CreatedAt != visitors[j].CreatedAt {
			return visitors[i].CreatedAt > visitors[j].CreatedAt
		}
		return visitors[i].Identifier < visitors[j].Identifier
	})
	return List{Visitors: visitors}
}

// List returns every ban record, newest first.
func (s *Store) List() List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list()
}

// Ban creates a ban, or re-activates an existing record for the same
// identifier ("reinstate" re-submits the identifier/reason pair and relies
// on this being idempotent).
func (s *Store) Ban(req *BanRequest) (List, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return List{}, ErrIdentifierRequired
	}
	reason := strings.TrimSpace(req.Reason)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Identifier == identifier {
			record.Active = true
			if reason != "" {
				record.Reason = reason
			}
			record.UpdatedAt = s.timestamp()
			return s.list(), nil
		}
	}

	now := s.timestamp()
	record := &BannedVisitor{
		ID:         uuid.New().String(),
		Identifier: identifier,
		Active:     true,
		Reason:     reason,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.records[record.ID] = record
	return s.list(), nil
}

// Unban deactivates a record without deleting it.
func (s *Store) Unban(id string) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return List{}, ErrNotFound
	}
	record.Active = false
	record.UpdatedAt = s.timestamp()
	return s.list(), nil
}

// Delete removes a record entirely.
func (s *Store) Delete(id string) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return List{}, ErrNotFound
	}
	delete(s.records, id)
	return s.list(), nil
}

// IsBanned reports whether the visitor identifier has an active ban.
func (s *Store) IsBanned(identifier string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.Identifier == identifier && record.Active {
			return true
		}
	}
	return false
}
