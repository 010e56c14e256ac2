package schedule

import "errors"

var (
	// ErrDateRequired is returned when a slot has no date.
	ErrDateRequired = errors.New("date is required")

	// ErrTimeRequired is returned when a slot has no start time.
	ErrTimeRequired = errors.New("time is required")

	// ErrDurationRequired is returned when a slot duration is missing or negative.
	ErrDurationRequired = errors.New("duration must be a positive number of minutes")

	// ErrSlotRequired is returned when a booking names no slot.
	ErrSlotRequired = errors.New("slot is required")

	// ErrNameRequired is returned when a booking has no client name.
	ErrNameRequired = errors.New("name is required")

	// ErrContactRequired is returned when a booking has neither email nor phone.
	ErrContactRequired = errors.New("either email or phone is required")

	// ErrDogNameRequired is returned when a booking has no dog name.
	ErrDogNameRequired = errors.New("dog name is required")

	// ErrSlotNotFound is returned when the named slot does not exist.
	ErrSlotNotFound = errors.New("that walk is no longer available")

	// ErrSlotTaken is returned when the slot was booked by someone else first.
	ErrSlotTaken = errors.New("that walk has just been booked — please pick another time")

	// ErrBookingNotFound is returned when a booking id is unknown.
	ErrBookingNotFound = errors.New("booking not found")
)
