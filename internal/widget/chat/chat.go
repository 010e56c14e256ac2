// Package chat mounts the visitor-facing chat widget: a polled transcript,
// a send form, and an autopilot/live status label.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pawsteps/platform/internal/apiclient"
	chatmodel "github.com/pawsteps/platform/internal/chat"
	"github.com/pawsteps/platform/internal/format"
	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/poll"
	"github.com/pawsteps/platform/internal/widget"
	"github.com/pawsteps/platform/pkg/logging"
)

// Role is the widget's mount attribute.
const Role = "chat-widget"

const (
	statusAutopilot = "Autopilot replies instantly"
	statusLive      = "A team member will reply shortly"

	sendFallback = "Sorry, we couldn't send that. Please try again."
	loadFallback = "Chat is unavailable right now."
)

// API is the slice of the site client the widget uses.
type API interface {
	ChatMessages(ctx context.Context, visitorID string) (*chatmodel.Transcript, error)
	PostChatMessage(ctx context.Context, visitorID, message string) (*chatmodel.Transcript, error)
}

// Widget is the visitor chat component.
type Widget struct {
	client    API
	visitorID string
	logger    *logging.Logger
	poller    *poll.Poller

	log      *page.Element
	status   *page.Element
	input    *page.Element
	send     *page.Element
	feedback *page.Element

	mu          sync.Mutex
	messages    []chatmodel.Message
	autopilot   bool
	isReturning bool
	sending     bool
	loaded      bool
}

// New mounts the widget on doc. Returns widget.ErrNotPresent when the page
// has no chat mount point.
func New(doc *page.Document, client API, visitorID string, interval time.Duration, logger *logging.Logger) (*Widget, error) {
	root := doc.FindRole(Role)
	if root == nil {
		return nil, widget.ErrNotPresent
	}
	if logger == nil {
		logger = logging.Default()
	}

	w := &Widget{client: client, visitorID: visitorID, logger: logger}

	var err error
	if w.log, err = widget.RequireRole(root, "chat-log"); err != nil {
		return nil, err
	}
	if w.status, err = widget.RequireRole(root, "chat-status"); err != nil {
		return nil, err
	}
	if w.input, err = widget.RequireRole(root, "chat-input"); err != nil {
		return nil, err
	}
	if w.send, err = widget.RequireRole(root, "chat-send"); err != nil {
		return nil, err
	}
	if w.feedback, err = widget.RequireRole(root, "chat-feedback"); err != nil {
		return nil, err
	}

	w.poller = poll.New(interval, func(ctx context.Context) {
		if err := w.Refresh(ctx); err != nil {
			w.logger.Debug("chat poll failed", "error", err)
		}
	})

	if w.visitorID == "" {
		// No storage means no stable identity; chat cannot work.
		widget.SetFeedback(w.feedback, "Chat needs browser storage, which isn't available right now.", true)
		w.setControlsEnabled(false)
	}
	return w, nil
}

// Name identifies the widget in host logs.
func (w *Widget) Name() string { return Role }

// Start begins transcript polling. A widget with no visitor identity stays
// idle: it must never issue visitor-scoped requests.
func (w *Widget) Start(ctx context.Context) {
	if w.visitorID == "" {
		return
	}
	w.poller.Start(ctx)
}

// Stop cancels polling.
func (w *Widget) Stop() {
	w.poller.Stop()
}

// Refresh fetches the transcript and re-renders. Poll failures surface a
// notice only until the first successful load; after that the stale
// transcript stays up.
func (w *Widget) Refresh(ctx context.Context) error {
	if w.visitorID == "" {
		return nil
	}
	transcript, err := w.client.ChatMessages(ctx, w.visitorID)
	if err != nil {
		w.mu.Lock()
		loaded := w.loaded
		w.mu.Unlock()
		if !loaded {
			widget.SetFeedback(w.feedback, loadFallback, true)
		}
		return err
	}
	w.adopt(transcript)
	return nil
}

// Send posts a visitor message and re-renders from the response. Whitespace
// is rejected locally without a network call. Controls are disabled for the
// duration of the request and always restored.
func (w *Widget) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		widget.SetFeedback(w.feedback, "Please type a message first.", true)
		return nil
	}

	w.mu.Lock()
	if w.sending {
		w.mu.Unlock()
		return nil
	}
	w.sending = true
	w.mu.Unlock()

	w.setControlsEnabled(false)
	defer func() {
		w.mu.Lock()
		w.sending = false
		w.mu.Unlock()
		w.setControlsEnabled(true)
	}()

	transcript, err := w.client.PostChatMessage(ctx, w.visitorID, strings.TrimSpace(text))
	if err != nil {
		widget.SetFeedback(w.feedback, apiclient.ResolveErrorMessage(err, sendFallback), true)
		return err
	}

	w.input.SetAttr("value", "")
	w.adopt(transcript)
	return nil
}

func (w *Widget) adopt(transcript *chatmodel.Transcript) {
	w.mu.Lock()
	w.messages = transcript.Messages
	w.autopilot = transcript.Autopilot
	w.isReturning = transcript.IsReturning
	w.loaded = true
	w.mu.Unlock()
	w.render()
}

func (w *Widget) setControlsEnabled(enabled bool) {
	if enabled && w.visitorID != "" {
		w.input.RemoveAttr("disabled")
		w.send.RemoveAttr("disabled")
	} else {
		w.input.SetAttr("disabled", "disabled")
		w.send.SetAttr("disabled", "disabled")
	}
}

func (w *Widget) render() {
	w.mu.Lock()
	messages := w.messages
	autopilot := w.autopilot
	isReturning := w.isReturning
	w.mu.Unlock()

	var b strings.Builder
	if len(messages) == 0 {
		b.WriteString(`<p class="empty" data-role="chat-empty">Say hello — we're quick to reply!</p>`)
	}
	for _, msg := range messages {
		fmt.Fprintf(&b,
			`<div class="message message-%s" data-role="chat-message"><p>%s</p><span class="time">%s</span></div>`,
			format.EscapeHTML(msg.Role),
			format.EscapeHTML(msg.Content),
			format.Timestamp(msg.Timestamp),
		)
	}
	if err := w.log.SetHTML(b.String()); err != nil {
		w.logger.Warn("chat render failed", "error", err)
		return
	}

	status := statusLive
	if autopilot {
		status = statusAutopilot
	}
	if isReturning {
		status = "Welcome back! " + status
	}
	w.status.SetText(status)
	widget.SetFeedback(w.feedback, "", false)
}
