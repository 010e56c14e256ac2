// Package adminchat mounts the admin console for live chat: the visitor
// roster, the selected conversation, the reply form, and the autopilot
// settings.
package adminchat

import (
	"context"
	"fmt"
	"net/http"
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
const Role = "admin-chat"

const (
	modeAutopilot = "Autopilot is answering visitors automatically."
	modeLive      = "Autopilot is off. Visitors get live replies from the team."

	autopilotReplyBlocked = "Autopilot is handling replies. Turn it off to respond yourself."
	replyFallback         = "Couldn't send that reply. Please try again."
	settingsFallback      = "Couldn't save chat settings."
)

// API is the slice of the site client the console uses.
type API interface {
	Conversations(ctx context.Context) (*chatmodel.ConversationList, error)
	ChatMessages(ctx context.Context, visitorID string) (*chatmodel.Transcript, error)
	Respond(ctx context.Context, visitorID, message string) (*chatmodel.Transcript, error)
	ChatSettings(ctx context.Context) (*chatmodel.Settings, error)
	SaveChatSettings(ctx context.Context, settings chatmodel.Settings) (*chatmodel.Settings, error)
}

// Console is the admin chat component.
type Console struct {
	client API
	logger *logging.Logger

	rosterPoller   *poll.Poller
	messagesPoller *poll.Poller

	visitorList *page.Element
	log         *page.Element
	replyInput  *page.Element
	replySend   *page.Element
	mode        *page.Element
	waiting     *page.Element
	feedback    *page.Element

	mu              sync.Mutex
	autopilot       bool
	businessContext string
	selectedVisitor string
	visitors        []chatmodel.VisitorSummary
	messages        []chatmodel.Message
	waitingCount    int
	replying        bool
}

// New mounts the console on doc. Returns widget.ErrNotPresent when the page
// has no admin chat mount point.
func New(doc *page.Document, client API, rosterInterval, messageInterval time.Duration, logger *logging.Logger) (*Console, error) {
	root := doc.FindRole(Role)
	if root == nil {
		return nil, widget.ErrNotPresent
	}
	if logger == nil {
		logger = logging.Default()
	}

	c := &Console{client: client, logger: logger}

	var err error
	if c.visitorList, err = widget.RequireRole(root, "admin-visitors"); err != nil {
		return nil, err
	}
	if c.log, err = widget.RequireRole(root, "admin-chat-log"); err != nil {
		return nil, err
	}
	if c.replyInput, err = widget.RequireRole(root, "admin-reply-input"); err != nil {
		return nil, err
	}
	if c.replySend, err = widget.RequireRole(root, "admin-reply-send"); err != nil {
		return nil, err
	}
	if c.mode, err = widget.RequireRole(root, "admin-chat-mode"); err != nil {
		return nil, err
	}
	if c.waiting, err = widget.RequireRole(root, "admin-waiting-count"); err != nil {
		return nil, err
	}
	if c.feedback, err = widget.RequireRole(root, "admin-chat-feedback"); err != nil {
		return nil, err
	}

	c.rosterPoller = poll.New(rosterInterval, func(ctx context.Context) {
		if err := c.Refresh(ctx); err != nil {
			c.logger.Debug("conversation poll failed", "error", err)
		}
	})
	c.messagesPoller = poll.New(messageInterval, func(ctx context.Context) {
		if err := c.RefreshMessages(ctx); err != nil {
			c.logger.Debug("message poll failed", "error", err)
		}
	})

	return c, nil
}

// Name identifies the widget in host logs.
func (c *Console) Name() string { return Role }

// Start begins roster and message polling.
func (c *Console) Start(ctx context.Context) {
	c.rosterPoller.Start(ctx)
	c.messagesPoller.Start(ctx)
}

// Stop cancels both poll loops.
func (c *Console) Stop() {
	c.rosterPoller.Stop()
	c.messagesPoller.Stop()
}

// Refresh fetches the roster, applies the selection rule, and re-renders.
func (c *Console) Refresh(ctx context.Context) error {
	list, err := c.client.Conversations(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.autopilot = list.Autopilot
	c.visitors = list.Visitors
	c.waitingCount = list.WaitingCount
	previous := c.selectedVisitor
	c.selectedVisitor = chooseSelection(previous, list.Visitors)
	changed := c.selectedVisitor != previous
	c.mu.Unlock()

	c.render()
	if changed {
		c.messagesPoller.Trigger()
	}
	return nil
}

// chooseSelection keeps the current visitor while they remain listed;
// otherwise it prefers a waiting visitor, then the first, then none.
func chooseSelection(current string, visitors []chatmodel.VisitorSummary) string {
	if current != "" {
		for _, v := range visitors {
			if v.VisitorID == current {
				return current
			}
		}
	}
	for _, v := range visitors {
		if v.Waiting {
			return v.VisitorID
		}
	}
	if len(visitors) > 0 {
		return visitors[0].VisitorID
	}
	return ""
}

// SelectVisitor switches the open conversation and refreshes it immediately.
// Selecting an unknown visitor is ignored.
func (c *Console) SelectVisitor(id string) {
	c.mu.Lock()
	known := false
	for _, v := range c.visitors {
		if v.VisitorID == id {
			known = true
			break
		}
	}
	if !known || c.selectedVisitor == id {
		c.mu.Unlock()
		return
	}
	c.selectedVisitor = id
	c.messages = nil
	c.mu.Unlock()

	c.render()
	c.messagesPoller.Trigger()
}

// SelectedVisitor returns the currently open conversation's visitor id.
func (c *Console) SelectedVisitor() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedVisitor
}

// RefreshMessages fetches the selected conversation's transcript. There is
// no cancellation when selection changes mid-flight; the stale response is
// dropped on arrival instead.
func (c *Console) RefreshMessages(ctx context.Context) error {
	c.mu.Lock()
	selected := c.selectedVisitor
	c.mu.Unlock()
	if selected == "" {
		return nil
	}

	transcript, err := c.client.ChatMessages(ctx, selected)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.selectedVisitor != selected {
		c.mu.Unlock()
		return nil
	}
	c.messages = transcript.Messages
	c.mu.Unlock()

	c.render()
	return nil
}

// Reply sends a live agent message to the selected visitor. Replying is
// blocked client-side while autopilot is on or nothing is selected; the
// backend's 400 while autopilot is on gets its own message.
func (c *Console) Reply(ctx context.Context, text string) error {
	c.mu.Lock()
	autopilot := c.autopilot
	selected := c.selectedVisitor
	busy := c.replying
	c.mu.Unlock()

	if autopilot {
		widget.SetFeedback(c.feedback, autopilotReplyBlocked, true)
		return nil
	}
	if selected == "" {
		widget.SetFeedback(c.feedback, "Select a visitor first.", true)
		return nil
	}
	if strings.TrimSpace(text) == "" {
		widget.SetFeedback(c.feedback, "Please type a reply first.", true)
		return nil
	}
	if busy {
		return nil
	}

	c.mu.Lock()
	c.replying = true
	c.mu.Unlock()
	c.render()
	defer func() {
		c.mu.Lock()
		c.replying = false
		c.mu.Unlock()
		c.render()
	}()

	transcript, err := c.client.Respond(ctx, selected, strings.TrimSpace(text))
	if err != nil {
		if apiclient.IsStatus(err, http.StatusBadRequest) {
			widget.SetFeedback(c.feedback, autopilotReplyBlocked, true)
		} else {
			widget.SetFeedback(c.feedback, apiclient.ResolveErrorMessage(err, replyFallback), true)
		}
		return err
	}

	c.mu.Lock()
	c.messages = transcript.Messages
	c.autopilot = transcript.Autopilot
	c.waitingCount = transcript.WaitingCount
	c.mu.Unlock()

	c.replyInput.SetAttr("value", "")
	widget.SetFeedback(c.feedback, "", false)
	return nil
}

// SaveSettings stores the autopilot flag and business context, reflecting
// the new mode immediately rather than waiting for the next poll.
func (c *Console) SaveSettings(ctx context.Context, autopilot bool, businessContext string) error {
	saved, err := c.client.SaveChatSettings(ctx, chatmodel.Settings{
		Autopilot:       autopilot,
		BusinessContext: businessContext,
	})
	if err != nil {
		widget.SetFeedback(c.feedback, apiclient.ResolveErrorMessage(err, settingsFallback), true)
		return err
	}

	c.mu.Lock()
	c.autopilot = saved.Autopilot
	c.businessContext = saved.BusinessContext
	c.mu.Unlock()

	c.render()
	widget.SetFeedback(c.feedback, "Settings saved.", false)
	return nil
}

func (c *Console) render() {
	c.mu.Lock()
	visitors := c.visitors
	messages := c.messages
	selected := c.selectedVisitor
	autopilot := c.autopilot
	waitingCount := c.waitingCount
	replying := c.replying
	c.mu.Unlock()

	var list strings.Builder
	if len(visitors) == 0 {
		list.WriteString(`<p class="empty">No conversations yet.</p>`)
	}
	for _, v := range visitors {
		classes := "visitor"
		if v.VisitorID == selected {
			classes += " selected"
		}
		badge := ""
		if v.Waiting {
			badge = `<span class="badge waiting" data-role="waiting-badge">waiting</span>`
		}
		preview := ""
		if v.LastMessage != nil {
			preview = format.Truncate(v.LastMessage.Content, 60)
		}
		fmt.Fprintf(&list,
			`<li class="%s" data-role="admin-visitor" data-visitor-id="%s"><span class="label">%s</span>%s<span class="preview">%s</span></li>`,
			classes,
			format.EscapeHTML(v.VisitorID),
			format.EscapeHTML(v.Label),
			badge,
			format.EscapeHTML(preview),
		)
	}
	if err := c.visitorList.SetHTML(list.String()); err != nil {
		c.logger.Warn("visitor list render failed", "error", err)
	}

	var log strings.Builder
	if selected == "" {
		log.WriteString(`<p class="empty">Select a conversation to read it.</p>`)
	}
	for _, msg := range messages {
		fmt.Fprintf(&log,
			`<div class="message message-%s" data-role="admin-message"><p>%s</p><span class="time">%s</span></div>`,
			format.EscapeHTML(msg.Role),
			format.EscapeHTML(msg.Content),
			format.Timestamp(msg.Timestamp),
		)
	}
	if err := c.log.SetHTML(log.String()); err != nil {
		c.logger.Warn("chat log render failed", "error", err)
	}

	if autopilot {
		c.mode.SetText(modeAutopilot)
	} else {
		c.mode.SetText(modeLive)
	}
	c.waiting.SetText(fmt.Sprintf("%d", waitingCount))

	if autopilot || selected == "" || replying {
		c.replyInput.SetAttr("disabled", "disabled")
		c.replySend.SetAttr("disabled", "disabled")
	} else {
		c.replyInput.RemoveAttr("disabled")
		c.replySend.RemoveAttr("disabled")
	}
}
