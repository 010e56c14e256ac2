// Package schedule mounts the booking surfaces: the public slot list with
// its booking modal, and the admin slot and booking manager.
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

// VisitorRole is the public schedule's mount attribute.
const VisitorRole = "slot-list"

const (
	bookingConfirmed = "Booking confirmed! We'll be in touch to finalise the details."
	bookingFallback  = "Couldn't complete that booking. Please try again."

	// How long the confirmation stays up before the modal closes itself.
	defaultCloseDelay = 2 * time.Second
)

// VisitorAPI is the slice of the site client the public schedule uses.
type VisitorAPI interface {
	Slots(ctx context.Context) ([]schedmodel.Slot, error)
	Book(ctx context.Context, req schedmodel.BookingRequest) ([]schedmodel.Slot, error)
}

// VisitorSchedule is the public walk-booking component.
type VisitorSchedule struct {
	client VisitorAPI
	logger *logging.Logger
	poller *poll.Poller

	cards        *page.Element
	filter       *page.Element
	feedback     *page.Element
	modal        *page.Element
	modalSummary *page.Element
	modalSubmit  *page.Element
	modalNotice  *page.Element

	closeDelay time.Duration

	mu         sync.Mutex
	slots      []schedmodel.Slot
	dateFilter string
	loaded     bool
	openSlot   *schedmodel.Slot
	submitting bool
	done       bool
	closeTimer *time.Timer
}

// NewVisitor mounts the public schedule on doc. Returns widget.ErrNotPresent
// when the page has no slot list.
func NewVisitor(doc *page.Document, client VisitorAPI, interval time.Duration, logger *logging.Logger) (*VisitorSchedule, error) {
	root := doc.FindRole(VisitorRole)
	if root == nil {
		return nil, widget.ErrNotPresent
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &VisitorSchedule{client: client, logger: logger, closeDelay: defaultCloseDelay}

	var err error
	if s.cards, err = widget.RequireRole(root, "slot-cards"); err != nil {
		return nil, err
	}
	if s.filter, err = widget.RequireRole(root, "slot-filter"); err != nil {
		return nil, err
	}
	if s.feedback, err = widget.RequireRole(root, "slot-feedback"); err != nil {
		return nil, err
	}
	if s.modal, err = widget.RequireRole(root, "booking-modal"); err != nil {
		return nil, err
	}
	if s.modalSummary, err = widget.RequireRole(root, "booking-summary"); err != nil {
		return nil, err
	}
	if s.modalSubmit, err = widget.RequireRole(root, "booking-submit"); err != nil {
		return nil, err
	}
	if s.modalNotice, err = widget.RequireRole(root, "booking-feedback"); err != nil {
		return nil, err
	}

	s.poller = poll.New(interval, func(ctx context.Context) {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Debug("slot poll failed", "error", err)
		}
	})
	return s, nil
}

// Name identifies the widget in host logs.
func (s *VisitorSchedule) Name() string { return VisitorRole }

// Start begins polling the open slot list.
func (s *VisitorSchedule) Start(ctx context.Context) { s.poller.Start(ctx) }

// Stop cancels the poll loop and any pending modal close.
func (s *VisitorSchedule) Stop() {
	s.poller.Stop()
	s.mu.Lock()
	if s.closeTimer != nil {
		s.closeTimer.Stop()
		s.closeTimer = nil
	}
	s.mu.Unlock()
}

// Refresh fetches the open slots and re-renders the cards.
func (s *VisitorSchedule) Refresh(ctx context.Context) error {
	slots, err := s.client.Slots(ctx)
	if err != nil {
		s.mu.Lock()
		firstLoad := !s.loaded
		s.mu.Unlock()
		if firstLoad {
			widget.SetFeedback(s.feedback, "Couldn't load the walk schedule. Please refresh the page.", true)
		}
		return err
	}
	s.mu.Lock()
	s.slots = slots
	s.loaded = true
	s.mu.Unlock()
	widget.SetFeedback(s.feedback, "", false)
	s.renderCards()
	return nil
}

// SetDateFilter narrows the cards to one date (YYYY-MM-DD); empty clears it.
func (s *VisitorSchedule) SetDateFilter(date string) {
	s.mu.Lock()
	s.dateFilter = strings.TrimSpace(date)
	s.mu.Unlock()
	s.filter.SetAttr("value", date)
	s.renderCards()
}

// OpenBooking opens the booking modal for a listed slot. Unknown or stale
// slot ids are ignored.
func (s *VisitorSchedule) OpenBooking(slotID string) {
	s.mu.Lock()
	var slot *schedmodel.Slot
	for i := range s.slots {
		if s.slots[i].ID == slotID {
			copied := s.slots[i]
			slot = &copied
			break
		}
	}
	if slot == nil {
		s.mu.Unlock()
		return
	}
	s.openSlot = slot
	s.done = false
	s.mu.Unlock()

	s.modalSummary.SetText(fmt.Sprintf("%s at %s (%s, %s)",
		format.Date(slot.Date),
		format.Time(slot.Time),
		format.Duration(slot.DurationMinutes),
		format.Price(slot.Price),
	))
	widget.SetFeedback(s.modalNotice, "", false)
	s.modal.AddClass("open")
	s.modal.SetAttr("aria-hidden", "false")
}

// CloseBooking dismisses the modal and clears its state.
func (s *VisitorSchedule) CloseBooking() {
	s.mu.Lock()
	s.openSlot = nil
	s.done = false
	if s.closeTimer != nil {
		s.closeTimer.Stop()
		s.closeTimer = nil
	}
	s.mu.Unlock()

	s.modal.RemoveClass("open")
	s.modal.SetAttr("aria-hidden", "true")
}

// SubmitBooking books the open slot. Validation failures stay local; a
// successful booking drops the slot, shows the confirmation, and closes the
// modal after a short delay. On failure the slot list is reloaded so a
// just-taken slot disappears.
func (s *VisitorSchedule) SubmitBooking(ctx context.Context, name, email, phone, dogName, notes string) error {
	s.mu.Lock()
	slot := s.openSlot
	busy := s.submitting
	s.mu.Unlock()

	if slot == nil || busy {
		return nil
	}

	req := schedmodel.BookingRequest{
		SlotID:  slot.ID,
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Phone:   strings.TrimSpace(phone),
		DogName: strings.TrimSpace(dogName),
		Notes:   strings.TrimSpace(notes),
	}
	if err := req.Validate(); err != nil {
		widget.SetFeedback(s.modalNotice, err.Error(), true)
		return nil
	}

	s.mu.Lock()
	s.submitting = true
	s.mu.Unlock()
	s.modalSubmit.SetAttr("disabled", "disabled")
	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
		s.modalSubmit.RemoveAttr("disabled")
	}()

	slots, err := s.client.Book(ctx, req)
	if err != nil {
		widget.SetFeedback(s.modalNotice, apiclient.ResolveErrorMessage(err, bookingFallback), true)
		if reloadErr := s.Refresh(ctx); reloadErr != nil {
			s.logger.Debug("slot reload after failed booking failed", "error", reloadErr)
		}
		return err
	}

	s.mu.Lock()
	if slots != nil {
		s.slots = slots
	} else {
		kept := s.slots[:0]
		for _, sl := range s.slots {
			if sl.ID != req.SlotID {
				kept = append(kept, sl)
			}
		}
		s.slots = kept
	}
	s.done = true
	delay := s.closeDelay
	s.mu.Unlock()

	s.renderCards()
	widget.SetFeedback(s.modalNotice, bookingConfirmed, false)

	s.mu.Lock()
	if s.closeTimer != nil {
		s.closeTimer.Stop()
	}
	s.closeTimer = time.AfterFunc(delay, s.CloseBooking)
	s.mu.Unlock()
	return nil
}

func (s *VisitorSchedule) renderCards() {
	s.mu.Lock()
	slots := s.slots
	filter := s.dateFilter
	s.mu.Unlock()

	var b strings.Builder
	shown := 0
	for _, slot := range slots {
		if filter != "" && slot.Date != filter {
			continue
		}
		shown++
		notes := ""
		if slot.Notes != "" {
			notes = `<p class="notes">` + format.EscapeHTML(slot.Notes) + `</p>`
		}
		fmt.Fprintf(&b,
			`<div class="slot-card" data-role="slot-card" data-slot-id="%s"><h3>%s</h3><p>%s · %s · %s</p>%s<button data-role="slot-book" data-slot-id="%s">Book this walk</button></div>`,
			format.EscapeHTML(slot.ID),
			format.EscapeHTML(format.Date(slot.Date)),
			format.Time(slot.Time),
			format.Duration(slot.DurationMinutes),
			format.Price(slot.Price),
			notes,
			format.EscapeHTML(slot.ID),
		)
	}
	if shown == 0 {
		if filter != "" {
			b.WriteString(`<p class="empty">No walks available on that date.</p>`)
		} else {
			b.WriteString(`<p class="empty">No walks available right now. Check back soon!</p>`)
		}
	}
	if err := s.cards.SetHTML(b.String()); err != nil {
		s.logger.Warn("slot card render failed", "error", err)
	}
}
