package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pawsteps/platform/internal/bans"
	"github.com/pawsteps/platform/internal/chat"
	"github.com/pawsteps/platform/internal/enquiries"
	"github.com/pawsteps/platform/internal/schedule"
	"github.com/pawsteps/platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger    *logging.Logger
	Chat      *chat.State
	Schedule  *schedule.Store
	Enquiries *enquiries.Store
	Bans      *bans.Store

	// Pages serves everything outside /api (the prerendered site).
	// Optional; nil leaves non-API paths at 404.
	Pages http.Handler
}

// New creates the site router.
func New(cfg *Config) http.Handler {
	h := NewHandler(cfg.Chat, cfg.Schedule, cfg.Enquiries, cfg.Bans, cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(cfg.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/chat/messages", h.ChatMessages)
		api.Post("/chat", h.PostChatMessage)
		api.Get("/chat/status", h.ChatStatus)
		api.Post("/chat/respond", h.Respond)

		api.Get("/slots", h.Slots)
		api.Post("/bookings", h.CreateBooking)

		api.Post("/enquiries", h.CreateEnquiry)

		api.Route("/admin", func(admin chi.Router) {
			admin.Get("/chat-settings", h.ChatSettings)
			admin.Post("/chat-settings", h.ChatSettings)
			admin.Get("/conversations", h.Conversations)

			admin.Get("/banned-visitors", h.ListBans)
			admin.Post("/banned-visitors", h.CreateBan)
			admin.Post("/banned-visitors/{id}/unban", h.Unban)
			admin.Delete("/banned-visitors/{id}", h.DeleteBan)

			admin.Get("/schedule", h.AdminSchedule)
			admin.Post("/slots", h.CreateSlot)
			admin.Delete("/slots/{id}", h.DeleteSlot)
			admin.Post("/bookings/{id}/status", h.SetBookingStatus)

			admin.Get("/enquiries", h.ListEnquiries)
			admin.Patch("/enquiries/{id}", h.UpdateEnquiry)
			admin.Delete("/enquiries/{id}", h.DeleteEnquiry)
		})
	})

	if cfg.Pages != nil {
		r.NotFound(cfg.Pages.ServeHTTP)
	}
	return r
}
