// Package bans mounts the admin ban manager: the ban list, the ban form,
// and the unban / reinstate / delete row actions.
package bans

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pawsteps/platform/internal/apiclient"
	bansmodel "github.com/pawsteps/platform/internal/bans"
	"github.com/pawsteps/platform/internal/format"
	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/poll"
	"github.com/pawsteps/platform/internal/widget"
	"github.com/pawsteps/platform/pkg/logging"
)

// Role is the widget's mount attribute.
const Role = "ban-manager"

const (
	identifierRequired = "Visitor identifier is required."
	banFallback        = "Couldn't save that ban."
	actionFallback     = "Couldn't update that ban."
)

// API is the slice of the site client the manager uses.
type API interface {
	BannedVisitors(ctx context.Context) (*bansmodel.List, error)
	BanVisitor(ctx context.Context, identifier, reason string) (*bansmodel.List, error)
	UnbanVisitor(ctx context.Context, id string) (*bansmodel.List, error)
	DeleteBan(ctx context.Context, id string) (*bansmodel.List, error)
}

// Manager is the ban manager component.
type Manager struct {
	client API
	logger *logging.Logger
	poller *poll.Poller

	list       *page.Element
	identifier *page.Element
	reason     *page.Element
	submit     *page.Element
	feedback   *page.Element

	mu       sync.Mutex
	visitors []bansmodel.BannedVisitor
	busy     bool
}

// New mounts the manager on doc. Returns widget.ErrNotPresent when the page
// has no ban manager mount point.
func New(doc *page.Document, client API, interval time.Duration, logger *logging.Logger) (*Manager, error) {
	root := doc.FindRole(Role)
	if root == nil {
		return nil, widget.ErrNotPresent
	}
	if logger == nil {
		logger = logging.Default()
	}

	m := &Manager{client: client, logger: logger}

	var err error
	if m.list, err = widget.RequireRole(root, "ban-list"); err != nil {
		return nil, err
	}
	if m.identifier, err = widget.RequireRole(root, "ban-identifier"); err != nil {
		return nil, err
	}
	if m.reason, err = widget.RequireRole(root, "ban-reason"); err != nil {
		return nil, err
	}
	if m.submit, err = widget.RequireRole(root, "ban-submit"); err != nil {
		return nil, err
	}
	if m.feedback, err = widget.RequireRole(root, "ban-feedback"); err != nil {
		return nil, err
	}

	m.poller = poll.New(interval, func(ctx context.Context) {
		if err := m.Refresh(ctx); err != nil {
			m.logger.Debug("ban list poll failed", "error", err)
		}
	})
	return m, nil
}

// Name identifies the widget in host logs.
func (m *Manager) Name() string { return Role }

// Start begins polling the ban list.
func (m *Manager) Start(ctx context.Context) { m.poller.Start(ctx) }

// Stop cancels the poll loop.
func (m *Manager) Stop() { m.poller.Stop() }

// Refresh fetches the ban list and re-renders.
func (m *Manager) Refresh(ctx context.Context) error {
	list, err := m.client.BannedVisitors(ctx)
	if err != nil {
		return err
	}
	m.adopt(list.Visitors)
	return nil
}

// Ban creates (or re-activates) a ban for the identifier. Empty identifiers
// are rejected locally without a network call.
func (m *Manager) Ban(ctx context.Context, identifier, reason string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		widget.SetFeedback(m.feedback, identifierRequired, true)
		return nil
	}
	if !m.begin() {
		return nil
	}
	defer m.finish()

	list, err := m.client.BanVisitor(ctx, identifier, strings.TrimSpace(reason))
	if err != nil {
		widget.SetFeedback(m.feedback, apiclient.ResolveErrorMessage(err, banFallback), true)
		return err
	}

	m.identifier.SetAttr("value", "")
	m.reason.SetAttr("value", "")
	widget.SetFeedback(m.feedback, "", false)
	m.adopt(list.Visitors)
	return nil
}

// Unban deactivates the ban record without removing it.
func (m *Manager) Unban(ctx context.Context, id string) error {
	if !m.begin() {
		return nil
	}
	defer m.finish()

	list, err := m.client.UnbanVisitor(ctx, id)
	if err != nil {
		widget.SetFeedback(m.feedback, apiclient.ResolveErrorMessage(err, actionFallback), true)
		return err
	}
	widget.SetFeedback(m.feedback, "", false)
	m.adopt(list.Visitors)
	return nil
}

// Reinstate re-activates an inactive ban by re-submitting its identifier;
// the backend treats a repeat ban of the same identifier as re-activation.
func (m *Manager) Reinstate(ctx context.Context, id string) error {
	m.mu.Lock()
	var record *bansmodel.BannedVisitor
	for i := range m.visitors {
		if m.visitors[i].ID == id {
			record = &m.visitors[i]
			break
		}
	}
	m.mu.Unlock()
	if record == nil {
		return nil
	}
	return m.Ban(ctx, record.Identifier, record.Reason)
}

// Delete removes the ban record entirely. When the response carries no list
// the row is removed locally instead.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if !m.begin() {
		return nil
	}
	defer m.finish()

	list, err := m.client.DeleteBan(ctx, id)
	if err != nil {
		widget.SetFeedback(m.feedback, apiclient.ResolveErrorMessage(err, actionFallback), true)
		return err
	}
	widget.SetFeedback(m.feedback, "", false)

	if list != nil && list.Visitors != nil {
		m.adopt(list.Visitors)
		return nil
	}

	m.mu.Lock()
	kept := m.visitors[:0]
	for _, v := range m.visitors {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	m.visitors = kept
	m.mu.Unlock()
	m.render()
	return nil
}

func (m *Manager) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return false
	}
	m.busy = true
	m.submit.SetAttr("disabled", "disabled")
	return true
}

func (m *Manager) finish() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
	m.submit.RemoveAttr("disabled")
}

func (m *Manager) adopt(visitors []bansmodel.BannedVisitor) {
	m.mu.Lock()
	m.visitors = visitors
	m.mu.Unlock()
	m.render()
}

// render rebuilds the list from scratch; rendering the same records twice
// yields the same rows and badges.
func (m *Manager) render() {
	m.mu.Lock()
	visitors := m.visitors
	m.mu.Unlock()

	var b strings.Builder
	if len(visitors) == 0 {
		b.WriteString(`<p class="empty">No banned visitors.</p>`)
	}
	for _, v := range visitors {
		badge := `<span class="badge active" data-role="ban-badge">banned</span>`
		action := `<button data-role="ban-unban" data-ban-id="` + format.EscapeHTML(v.ID) + `">Unban</button>`
		if !v.Active {
			badge = `<span class="badge inactive" data-role="ban-badge">unbanned</span>`
			action = `<button data-role="ban-reinstate" data-ban-id="` + format.EscapeHTML(v.ID) + `">Reinstate</button>`
		}
		reason := ""
		if v.Reason != "" {
			reason = `<span class="reason">` + format.EscapeHTML(v.Reason) + `</span>`
		}
		fmt.Fprintf(&b,
			`<li data-role="ban-row" data-ban-id="%s"><span class="identifier">%s</span>%s%s%s<button data-role="ban-delete" data-ban-id="%s">Delete</button></li>`,
			format.EscapeHTML(v.ID),
			format.EscapeHTML(v.Identifier),
			badge,
			reason,
			action,
			format.EscapeHTML(v.ID),
		)
	}
	if err := m.list.SetHTML(b.String()); err != nil {
		m.logger.Warn("ban list render failed", "error", err)
	}
}
