package schedule

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store is the in-memory slot and booking store behind the development API.
type Store struct {
	mu       sync.RWMutex
	slots    map[string]*Slot
	bookings map[string]*Booking
}

// NewStore creates an empty schedule store.
func NewStore() *Store {
	return &Store{
		slots:    make(map[string]*Slot),
		bookings: make(map[string]*Booking),
	}
}

func (s *Store) sortedSlots() []Slot {
	out := make([]Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		out = append(out, *slot)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

func (s *Store) sortedBookings() []Booking {
	out := make([]Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		copied := *b
		if b.Slot != nil {
			slot := *b.Slot
			copied.Slot = &slot
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OpenSlots returns slots still available to book, soonest first.
func (s *Store) OpenSlots() []Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedSlots()
	open := make([]Slot, 0, len(all))
	for _, slot := range all {
		if !slot.IsBooked {
			open = append(open, slot)
		}
	}
	return open
}

// Snapshot returns all slots and bookings for the admin view.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Slots: s.sortedSlots(), Bookings: s.sortedBookings()}
}

// AvailableCount counts unbooked slots.
func (s *Store) AvailableCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, slot := range s.slots {
		if !slot.IsBooked {
			count++
		}
	}
	return count
}

// CreateSlot validates and adds a slot, returning the refreshed open list.
func (s *Store) CreateSlot(req *CreateSlotRequest) ([]Slot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot := &Slot{
		ID:              uuid.New().String(),
		Date:            strings.TrimSpace(req.Date),
		Time:            strings.TrimSpace(req.Time),
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Notes:           strings.TrimSpace(req.Notes),
	}
	s.slots[slot.ID] = slot
	return s.sortedSlots(), nil
}

// DeleteSlot removes a slot and any booking made against it, returning the
// remaining slots.
func (s *Store) DeleteSlot(id string) ([]Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[id]; !ok {
		return nil, ErrSlotNotFound
	}
	delete(s.slots, id)
	for bookingID, booking := range s.bookings {
		if booking.SlotID == id {
			delete(s.bookings, bookingID)
		}
	}
	return s.sortedSlots(), nil
}

// Book reserves a slot for a visitor. The slot is flagged booked so it
// disappears from the open list.
func (s *Store) Book(req *BookingRequest) ([]Slot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[strings.TrimSpace(req.SlotID)]
	if !ok {
		return nil, ErrSlotNotFound
	}
	if slot.IsBooked {
		return nil, ErrSlotTaken
	}

	slot.IsBooked = true
	snapshot := *slot
	booking := &Booking{
		ID:         uuid.New().String(),
		SlotID:     slot.ID,
		Slot:       &snapshot,
		ClientName: strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		DogName:    strings.TrimSpace(req.DogName),
		Notes:      strings.TrimSpace(req.Notes),
	}
	s.bookings[booking.ID] = booking

	open := make([]Slot, 0, len(s.slots))
	for _, candidate := range s.sortedSlots() {
		if !candidate.IsBooked {
			open = append(open, candidate)
		}
	}
	return open, nil
}

// SetBookingStatus toggles a booking's confirmed flag, returning all bookings.
func (s *Store) SetBookingStatus(id string, confirmed bool) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	booking.Confirmed = confirmed
	return s.sortedBookings(), nil
}
