package enquiries

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the in-memory enquiry store behind the development API. Every
// mutator returns the full refreshed list so clients replace their local
// copy wholesale.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Enquiry
	now     func() time.Time
}

// NewStore creates an empty enquiry store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Enquiry),
		now:     time.Now,
	}
}

// WithClock overrides the timestamp source for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) list() List {
	enquiries := make([]Enquiry, 0, len(s.entries))
	open := 0
	for _, e := range s.entries {
		enquiries = append(enquiries, *e)
		if e.Status != StatusComplete {
			open++
		}
	}
	sort.Slice(enquiries, func(i, j int) bool {
		if enquiries[i].CreatedAt != enquiries[j].CreatedAt {
			return enquiries[i].CreatedAt > enquiries[j].CreatedAt
		}
		return enquiries[i].ID > enquiries[j].ID
	})
	return List{
		Enquiries: enquiries,
		Counts:    Counts{Open: open, Total: len(enquiries)},
	}
}

// List returns all enquiries, newest first, with badge counts.
func (s *Store) List() List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list()
}

// Create validates and records a new enquiry.
func (s *Store) Create(req *CreateRequest) (List, error) {
	if err := req.Validate(); err != nil {
		return List{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := &Enquiry{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: s.now().UTC().Format(time.RFC3339),
		Status:    StatusNew,
	}
	s.entries[e.ID] = e
	return s.list(), nil
}

// Update applies a PATCH: a status move, a legacy completed flag, or a
// full-field detail edit.
func (s *Store) Update(id string, req *UpdateRequest) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return List{}, ErrNotFound
	}

	// Validate the whole request before touching the entry; a rejected
	// PATCH must leave the record exactly as it was.
	status := ""
	if req.Status != nil {
		status = strings.TrimSpace(*req.Status)
		switch status {
		case StatusNew, StatusInProgress, StatusComplete:
		default:
			return List{}, ErrInvalidStatus
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return List{}, ErrNameRequired
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		return List{}, ErrEmailRequired
	}
	if req.Message != nil && strings.TrimSpace(*req.Message) == "" {
		return List{}, ErrMessageRequired
	}

	if req.Status != nil || req.Completed != nil {
		legacy := req.Completed != nil && *req.Completed
		e.Status = NormalizeStatus(status, legacy)
	}
	if req.Name != nil {
		e.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		e.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		e.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Message != nil {
		e.Message = strings.TrimSpace(*req.Message)
	}

	return s.list(), nil
}

// Delete removes an enquiry.
func (s *Store) Delete(id string) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return List{}, ErrNotFound
	}
	delete(s.entries, id)
	return s.list(), nil
}
