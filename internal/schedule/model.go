// Package schedule holds the bookable walk slots and the bookings made
// against them.
package schedule

import "strings"

// Slot is a bookable walk window.
type Slot struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"` // YYYY-MM-DD
	Time            string  `json:"time"` // HH:MM, 24h
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Notes           string  `json:"notes"`
	IsBooked        bool    `json:"is_booked"`
}

// Booking is a visitor's reservation of a slot. Slot is denormalized so the
// admin list renders without a join.
type Booking struct {
	ID         string `json:"id"`
	SlotID     string `json:"slot_id"`
	Slot       *Slot  `json:"slot"`
	ClientName string `json:"client_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	DogName    string `json:"dog_name"`
	Notes      string `json:"notes"`
	Confirmed  bool   `json:"confirmed"`
}

// CreateSlotRequest is the admin slot-creation payload.
type CreateSlotRequest struct {
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Notes           string  `json:"notes"`
}

// Validate validates the slot creation request
func (r *CreateSlotRequest) Validate() error {
	if strings.TrimSpace(r.Date) == "" {
		return ErrDateRequired
	}
	if strings.TrimSpace(r.Time) == "" {
		return ErrTimeRequired
	}
	if r.DurationMinutes <= 0 {
		return ErrDurationRequired
	}
	return nil
}

// BookingRequest is the visitor booking payload.
type BookingRequest struct {
	SlotID  string `json:"slot_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	DogName string `json:"dog_name"`
	Notes   string `json:"notes"`
}

// Validate validates the booking request
func (r *BookingRequest) Validate() error {
	if strings.TrimSpace(r.SlotID) == "" {
		return ErrSlotRequired
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Phone) == "" {
		return ErrContactRequired
	}
	if strings.TrimSpace(r.DogName) == "" {
		return ErrDogNameRequired
	}
	return nil
}

// Snapshot is the admin schedule view: all slots plus all bookings.
type Snapshot struct {
	Slots    []Slot    `json:"slots"`
	Bookings []Booking `json:"bookings"`
}
