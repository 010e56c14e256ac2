// Package httpapi exposes the site's JSON API over the in-memory domain
// stores, plus the page routes.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pawsteps/platform/internal/bans"
	"github.com/pawsteps/platform/internal/chat"
	"github.com/pawsteps/platform/internal/enquiries"
	"github.com/pawsteps/platform/internal/schedule"
	"github.com/pawsteps/platform/pkg/logging"
)

// Handler serves the JSON API over the four domain stores.
type Handler struct {
	chat      *chat.State
	schedule  *schedule.Store
	enquiries *enquiries.Store
	bans      *bans.Store
	logger    *logging.Logger
}

// NewHandler creates the API handler.
func NewHandler(chatState *chat.State, sched *schedule.Store, enq *enquiries.Store, banStore *bans.Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		chat:      chatState,
		schedule:  sched,
		enquiries: enq,
		bans:      banStore,
		logger:    logger,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response encode failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return false
	}
	return true
}

// --- chat ---

// ChatMessages serves GET /api/chat/messages?visitor_id=ID.
func (h *Handler) ChatMessages(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.chat.Transcript(r.URL.Query().Get("visitor_id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, transcript)
}

// PostChatMessage serves POST /api/chat. Returns 201 with the updated
// transcript so the widget can re-render without a second fetch.
func (h *Handler) PostChatMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		VisitorID string `json:"visitor_id"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	transcript, err := h.chat.Post(r.Context(), req.VisitorID, req.Message)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, transcript)
}

// ChatStatus serves GET /api/chat/status.
func (h *Handler) ChatStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.chat.Status())
}

// Respond serves POST /api/chat/respond (live agent replies). Replying while
// autopilot is on is a 400.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		VisitorID string `json:"visitor_id"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	transcript, err := h.chat.Respond(req.VisitorID, req.Message)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, transcript)
}

// ChatSettings serves GET and POST /api/admin/chat-settings.
func (h *Handler) ChatSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.writeJSON(w, http.StatusOK, h.chat.Settings())
		return
	}
	var req chat.Settings
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.chat.UpdateSettings(req))
}

// Conversations serves GET /api/admin/conversations.
func (h *Handler) Conversations(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.chat.Conversations())
}

// --- bans ---

// ListBans serves GET /api/admin/banned-visitors.
func (h *Handler) ListBans(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.bans.List())
}

// CreateBan serves POST /api/admin/banned-visitors.
func (h *Handler) CreateBan(w http.ResponseWriter, r *http.Request) {
	var req bans.BanRequest
	if !h.decode(w, r, &req) {
		return
	}
	list, err := h.bans.Ban(&req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// Unban serves POST /api/admin/banned-visitors/{id}/unban.
func (h *Handler) Unban(w http.ResponseWriter, r *http.Request) {
	list, err := h.bans.Unban(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// DeleteBan serves DELETE /api/admin/banned-visitors/{id}.
func (h *Handler) DeleteBan(w http.ResponseWriter, r *http.Request) {
	list, err := h.bans.Delete(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// --- schedule ---

type slotsResponse struct {
	Slots []schedule.Slot `json:"slots"`
}

type bookingsResponse struct {
	Bookings []schedule.Booking `json:"bookings"`
}

// Slots serves GET /api/slots (open slots only).
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, slotsResponse{Slots: h.schedule.OpenSlots()})
}

// CreateBooking serves POST /api/bookings.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req schedule.BookingRequest
	if !h.decode(w, r, &req) {
		return
	}
	slots, err := h.schedule.Book(&req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrSlotNotFound):
			h.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, schedule.ErrSlotTaken):
			h.writeError(w, http.StatusConflict, err.Error())
		default:
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, slotsResponse{Slots: slots})
}

// AdminSchedule serves GET /api/admin/schedule.
func (h *Handler) AdminSchedule(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.schedule.Snapshot())
}

// CreateSlot serves POST /api/admin/slots.
func (h *Handler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateSlotRequest
	if !h.decode(w, r, &req) {
		return
	}
	slots, err := h.schedule.CreateSlot(&req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, slotsResponse{Slots: slots})
}

// DeleteSlot serves DELETE /api/admin/slots/{id}.
func (h *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	slots, err := h.schedule.DeleteSlot(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, slotsResponse{Slots: slots})
}

// SetBookingStatus serves POST /api/admin/bookings/{id}/status.
func (h *Handler) SetBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	bookings, err := h.schedule.SetBookingStatus(chi.URLParam(r, "id"), req.Confirmed)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, bookingsResponse{Bookings: bookings})
}

// --- enquiries ---

// CreateEnquiry serves POST /api/enquiries (the public contact form).
func (h *Handler) CreateEnquiry(w http.ResponseWriter, r *http.Request) {
	var req enquiries.CreateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.enquiries.Create(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// ListEnquiries serves GET /api/admin/enquiries.
func (h *Handler) ListEnquiries(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.enquiries.List())
}

// UpdateEnquiry serves PATCH /api/admin/enquiries/{id}: either a status
// change or a full-field detail edit.
func (h *Handler) UpdateEnquiry(w http.ResponseWriter, r *http.Request) {
	var req enquiries.UpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	list, err := h.enquiries.Update(chi.URLParam(r, "id"), &req)
	if err != nil {
		if errors.Is(err, enquiries.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
		} else {
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// DeleteEnquiry serves DELETE /api/admin/enquiries/{id}.
func (h *Handler) DeleteEnquiry(w http.ResponseWriter, r *http.Request) {
	list, err := h.enquiries.Delete(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}
