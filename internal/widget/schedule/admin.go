package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pawsteps/platform/internal/apiclient"
	"github.com/pawsteps/platform/internal/format"
	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/poll"
	schedmodel "github.com/pawsteps/platform/internal/schedule"
	"github.com/pawsteps/platform/internal/widget"
	"github.com/pawsteps/platform/pkg/logging"
)

// AdminRole is the admin schedule's mount attribute.
const AdminRole = "admin-schedule"

const (
	createSlotFallback = "Couldn't create that slot."
	scheduleFallback   = "Couldn't update the schedule."
)

// AdminAPI is the slice of the site client the admin schedule uses.
type AdminAPI interface {
	AdminSchedule(ctx context.Context) (*schedmodel.Snapshot, error)
	CreateSlot(ctx context.Context, req schedmodel.CreateSlotRequest) ([]schedmodel.Slot, error)
	DeleteSlot(ctx context.Context, id string) ([]schedmodel.Slot, error)
	SetBookingStatus(ctx context.Context, id string, confirmed bool) ([]schedmodel.Booking, error)
}

// AdminSchedule is the admin slot and booking manager.
type AdminSchedule struct {
	client AdminAPI
	logger *logging.Logger
	poller *poll.Poller

	slotList    *page.Element
	bookingList *page.Element
	available   *page.Element
	feedback    *page.Element
	createBtn   *page.Element

	mu       sync.Mutex
	slots    []schedmodel.Slot
	bookings []schedmodel.Booking
	busy     bool
}

// NewAdmin mounts the admin schedule on doc. Returns widget.ErrNotPresent
// when the page has no admin schedule mount point.
func NewAdmin(doc *page.Document, client AdminAPI, interval time.Duration, logger *logging.Logger) (*AdminSchedule, error) {
	root := doc.FindRole(AdminRole)
	if root == nil {
		return nil, widget.ErrNotPresent
	}
	if logger == nil {
		logger = logging.Default()
	}

	a := &AdminSchedule{client: client, logger: logger}

	var err error
	if a.slotList, err = widget.RequireRole(root, "admin-slot-list"); err != nil {
		return nil, err
	}
	if a.bookingList, err = widget.RequireRole(root, "admin-booking-list"); err != nil {
		return nil, err
	}
	if a.available, err = widget.RequireRole(root, "admin-available-count"); err != nil {
		return nil, err
	}
	if a.feedback, err = widget.RequireRole(root, "schedule-feedback"); err != nil {
		return nil, err
	}
	if a.createBtn, err = widget.RequireRole(root, "slot-create"); err != nil {
		return nil, err
	}

	a.poller = poll.New(interval, func(ctx context.Context) {
		if err := a.Refresh(ctx); err != nil {
			a.logger.Debug("schedule poll failed", "error", err)
		}
	})
	return a, nil
}

// Name identifies the widget in host logs.
func (a *AdminSchedule) Name() string { return AdminRole }

// Start begins polling the schedule snapshot.
func (a *AdminSchedule) Start(ctx context.Context) { a.poller.Start(ctx) }

// Stop cancels the poll loop.
func (a *AdminSchedule) Stop() { a.poller.Stop() }

// Refresh fetches slots and bookings together and re-renders both lists.
func (a *AdminSchedule) Refresh(ctx context.Context) error {
	snapshot, err := a.client.AdminSchedule(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.slots = snapshot.Slots
	a.bookings = snapshot.Bookings
	a.mu.Unlock()
	a.render()
	return nil
}

// CreateSlot validates and posts a new slot, adopting the returned slot list.
func (a *AdminSchedule) CreateSlot(ctx context.Context, req schedmodel.CreateSlotRequest) error {
	if err := req.Validate(); err != nil {
		widget.SetFeedback(a.feedback, err.Error(), true)
		return nil
	}
	if !a.begin() {
		return nil
	}
	defer a.finish()

	slots, err := a.client.CreateSlot(ctx, req)
	if err != nil {
		widget.SetFeedback(a.feedback, apiclient.ResolveErrorMessage(err, createSlotFallback), true)
		return err
	}

	a.mu.Lock()
	a.slots = slots
	a.mu.Unlock()
	widget.SetFeedback(a.feedback, "", false)
	a.render()
	return nil
}

// RemoveSlot deletes a slot; the backend cascades its bookings, so any
// booking against it is dropped locally too.
func (a *AdminSchedule) RemoveSlot(ctx context.Context, id string) error {
	if !a.begin() {
		return nil
	}
	defer a.finish()

	slots, err := a.client.DeleteSlot(ctx, id)
	if err != nil {
		widget.SetFeedback(a.feedback, apiclient.ResolveErrorMessage(err, scheduleFallback), true)
		return err
	}

	a.mu.Lock()
	a.slots = slots
	kept := a.bookings[:0]
	for _, b := range a.bookings {
		if b.SlotID != id {
			kept = append(kept, b)
		}
	}
	a.bookings = kept
	a.mu.Unlock()
	widget.SetFeedback(a.feedback, "", false)
	a.render()
	return nil
}

// ToggleConfirmed flips a booking between pending and confirmed.
func (a *AdminSchedule) ToggleConfirmed(ctx context.Context, id string) error {
	a.mu.Lock()
	var confirmed, found bool
	for i := range a.bookings {
		if a.bookings[i].ID == id {
			confirmed = a.bookings[i].Confirmed
			found = true
			break
		}
	}
	a.mu.Unlock()
	if !found {
		return nil
	}
	if !a.begin() {
		return nil
	}
	defer a.finish()

	bookings, err := a.client.SetBookingStatus(ctx, id, !confirmed)
	if err != nil {
		widget.SetFeedback(a.feedback, apiclient.ResolveErrorMessage(err, scheduleFallback), true)
		return err
	}

	a.mu.Lock()
	a.bookings = bookings
	a.mu.Unlock()
	widget.SetFeedback(a.feedback, "", false)
	a.render()
	return nil
}

func (a *AdminSchedule) begin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy {
		return false
	}
	a.busy = true
	a.createBtn.SetAttr("disabled", "disabled")
	return true
}

func (a *AdminSchedule) finish() {
	a.mu.Lock()
	a.busy = false
	a.mu.Unlock()
	a.createBtn.RemoveAttr("disabled")
}

func (a *AdminSchedule) render() {
	a.mu.Lock()
	slots := a.slots
	bookings := a.bookings
	a.mu.Unlock()

	available := 0
	var sb strings.Builder
	for _, slot := range slots {
		status := `<span class="badge open">open</span>`
		if slot.IsBooked {
			status = `<span class="badge booked">booked</span>`
		} else {
			available++
		}
		fmt.Fprintf(&sb,
			`<li data-role="admin-slot" data-slot-id="%s">%s %s · %s · %s %s<button data-role="admin-slot-remove" data-slot-id="%s">Remove</button></li>`,
			format.EscapeHTML(slot.ID),
			format.EscapeHTML(format.Date(slot.Date)),
			format.Time(slot.Time),
			format.Duration(slot.DurationMinutes),
			format.Price(slot.Price),
			status,
			format.EscapeHTML(slot.ID),
		)
	}
	if len(slots) == 0 {
		sb.WriteString(`<p class="empty">No slots on the schedule.</p>`)
	}
	if err := a.slotList.SetHTML(sb.String()); err != nil {
		a.logger.Warn("slot list render failed", "error", err)
	}
	a.available.SetText(fmt.Sprintf("%d", available))

	var bb strings.Builder
	for _, booking := range bookings {
		when := ""
		if booking.Slot != nil {
			when = fmt.Sprintf("%s %s", format.Date(booking.Slot.Date), format.Time(booking.Slot.Time))
		}
		label := "Confirm"
		badge := `<span class="badge pending">pending</span>`
		if booking.Confirmed {
			label = "Unconfirm"
			badge = `<span class="badge confirmed" data-role="booking-confirmed">confirmed</span>`
		}
		fmt.Fprintf(&bb,
			`<li data-role="admin-booking" data-booking-id="%s"><span class="client">%s with %s</span><span class="when">%s</span>%s<button data-role="booking-toggle" data-booking-id="%s">%s</button></li>`,
			format.EscapeHTML(booking.ID),
			format.EscapeHTML(booking.ClientName),
			format.EscapeHTML(booking.DogName),
			format.EscapeHTML(when),
			badge,
			format.EscapeHTML(booking.ID),
			label,
		)
	}
	if len(bookings) == 0 {
		bb.WriteString(`<p class="empty">No bookings yet.</p>`)
	}
	if err := a.bookingList.SetHTML(bb.String()); err != nil {
		a.logger.Warn("booking list render failed", "error", err)
	}
}
