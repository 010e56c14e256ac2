package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSlot(t *testing.T, store *Store, date, hhmm string) Slot {
	t.Helper()
	slots, err := store.CreateSlot(&CreateSlotRequest{
		Date:            date,
		Time:            hhmm,
		DurationMinutes: 60,
		Price:           25,
	})
	require.NoError(t, err)
	for _, slot := range slots {
		if slot.Date == date && slot.Time == hhmm {
			return slot
		}
	}
	t.Fatalf("created slot not returned")
	return Slot{}
}

func validBooking(slotID string) *BookingRequest {
	return &BookingRequest{
		SlotID:  slotID,
		Name:    "Jess Carter",
		Email:   "jess@example.com",
		DogName: "Biscuit",
	}
}

func TestCreateSlotValidation(t *testing.T) {
	store := NewStore()

	_, err := store.CreateSlot(&CreateSlotRequest{Time: "10:00", DurationMinutes: 60})
	assert.ErrorIs(t, err, ErrDateRequired)

	_, err = store.CreateSlot(&CreateSlotRequest{Date: "2026-04-01", DurationMinutes: 60})
	assert.ErrorIs(t, err, ErrTimeRequired)

	_, err = store.CreateSlot(&CreateSlotRequest{Date: "2026-04-01", Time: "10:00"})
	assert.ErrorIs(t, err, ErrDurationRequired)
}

func TestBookingRemovesSlotFromOpenList(t *testing.T) {
	store := NewStore()
	slot := seedSlot(t, store, "2026-04-01", "10:00")
	seedSlot(t, store, "2026-04-01", "14:00")

	open, err := store.Book(validBooking(slot.ID))
	require.NoError(t, err)

	require.Len(t, open, 1)
	assert.NotEqual(t, slot.ID, open[0].ID)

	// A subsequent fetch agrees with the mutation response.
	refreshed := store.OpenSlots()
	require.Len(t, refreshed, 1)
	assert.NotEqual(t, slot.ID, refreshed[0].ID)
	assert.Equal(t, 1, store.AvailableCount())
}

func TestBookingConflicts(t *testing.T) {
	store := NewStore()
	slot := seedSlot(t, store, "2026-04-01", "10:00")

	_, err := store.Book(validBooking(slot.ID))
	require.NoError(t, err)

	_, err = store.Book(validBooking(slot.ID))
	assert.ErrorIs(t, err, ErrSlotTaken)

	_, err = store.Book(validBooking("missing"))
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestBookingValidation(t *testing.T) {
	store := NewStore()
	slot := seedSlot(t, store, "2026-04-01", "10:00")

	req := validBooking(slot.ID)
	req.Name = " "
	_, err := store.Book(req)
	assert.ErrorIs(t, err, ErrNameRequired)

	req = validBooking(slot.ID)
	req.Email = ""
	req.Phone = ""
	_, err = store.Book(req)
	assert.ErrorIs(t, err, ErrContactRequired)

	req = validBooking(slot.ID)
	req.DogName = ""
	_, err = store.Book(req)
	assert.ErrorIs(t, err, ErrDogNameRequired)
}

func TestSnapshotDenormalizesSlot(t *testing.T) {
	store := NewStore()
	slot := seedSlot(t, store, "2026-04-01", "10:00")

	_, err := store.Book(validBooking(slot.ID))
	require.NoError(t, err)

	snapshot := store.Snapshot()
	require.Len(t, snapshot.Bookings, 1)
	require.NotNil(t, snapshot.Bookings[0].Slot)
	assert.Equal(t, slot.ID, snapshot.Bookings[0].Slot.ID)
	assert.True(t, snapshot.Slots[0].IsBooked)
	assert.False(t, snapshot.Bookings[0].Confirmed)
}

func TestSetBookingStatus(t *testing.T) {
	store := NewStore()
	slot := seedSlot(t, store, "2026-04-01", "10:00")
	_, err := store.Book(validBooking(slot.ID))
	require.NoError(t, err)

	bookingID := store.Snapshot().Bookings[0].ID

	bookings, err := store.SetBookingStatus(bookingID, true)
	require.NoError(t, err)
	assert.True(t, bookings[0].Confirmed)

	bookings, err = store.SetBookingStatus(bookingID, false)
	require.NoError(t, err)
	assert.False(t, bookings[0].Confirmed)

	_, err = store.SetBookingStatus("missing", true)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestDeleteSlotCascades(t *testing.T) {
	store := NewStore()
	slot := seedSlot(t, store, "2026-04-01", "10:00")
	_, err := store.Book(validBooking(slot.ID))
	require.NoError(t, err)

	slots, err := store.DeleteSlot(slot.ID)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.Empty(t, store.Snapshot().Bookings)

	_, err = store.DeleteSlot(slot.ID)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestSlotsSortedByDateThenTime(t *testing.T) {
	store := NewStore()
	seedSlot(t, store, "2026-04-02", "09:00")
	seedSlot(t, store, "2026-04-01", "14:00")
	seedSlot(t, store, "2026-04-01", "10:00")

	open := store.OpenSlots()
	require.Len(t, open, 3)
	assert.Equal(t, "2026-04-01", open[0].Date)
	assert.Equal(t, "10:00", open[0].Time)
	assert.Equal(t, "2026-04-02", open[2].Date)
}
