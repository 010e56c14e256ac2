package enquiries

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pawsteps/platform/internal/apiclient"
	enqmodel "github.com/pawsteps/platform/internal/enquiries"
	"github.com/pawsteps/platform/internal/format"
	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/poll"
	"github.com/pawsteps/platform/internal/pubsub"
	"github.com/pawsteps/platform/internal/widget"
	"github.com/pawsteps/platform/pkg/logging"
)

// ManagerRole is the enquiry manager's mount attribute.
const ManagerRole = "enquiry-manager"

const managerFallback = "Couldn't update that enquiry."

// ManagerAPI is the slice of the site client the manager uses.
type ManagerAPI interface {
	Enquiries(ctx context.Context) (*enqmodel.List, error)
	UpdateEnquiry(ctx context.Context, id string, req enqmodel.UpdateRequest) (*enqmodel.List, error)
	DeleteEnquiry(ctx context.Context, id string) (*enqmodel.List, error)
}

// Manager is the admin enquiry list component.
type Manager struct {
	client ManagerAPI
	logger *logging.Logger
	poller *poll.Poller

	unsubscribe func()

	list     *page.Element
	counts   *page.Element
	feedback *page.Element

	mu       sync.Mutex
	model    enqmodel.List
	editorID string
	busy     bool
}

// NewManager mounts the manager on doc. When bus is non-nil, the manager
// refreshes immediately whenever enquiries.updated is published.
func NewManager(doc *page.Document, client ManagerAPI, bus *pubsub.Bus, interval time.Duration, logger *logging.Logger) (*Manager, error) {
	root := doc.FindRole(ManagerRole)
	if root == nil {
		return nil, widget.ErrNotPresent
	}
	if logger == nil {
		logger = logging.Default()
	}

	m := &Manager{client: client, logger: logger}

	var err error
	if m.list, err = widget.RequireRole(root, "enquiry-list"); err != nil {
		return nil, err
	}
	if m.counts, err = widget.RequireRole(root, "enquiry-counts"); err != nil {
		return nil, err
	}
	if m.feedback, err = widget.RequireRole(root, "enquiry-feedback"); err != nil {
		return nil, err
	}

	m.poller = poll.New(interval, func(ctx context.Context) {
		if err := m.Refresh(ctx); err != nil {
			m.logger.Debug("enquiry poll failed", "error", err)
		}
	})
	if bus != nil {
		m.unsubscribe = bus.Subscribe(pubsub.TopicEnquiriesUpdated, m.poller.Trigger)
	}
	return m, nil
}

// Name identifies the widget in host logs.
func (m *Manager) Name() string { return ManagerRole }

// Start begins polling the enquiry list.
func (m *Manager) Start(ctx context.Context) { m.poller.Start(ctx) }

// Stop cancels the poll loop and drops the bus subscription.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.poller.Stop()
}

// Refresh fetches the list and counts and re-renders.
func (m *Manager) Refresh(ctx context.Context) error {
	list, err := m.client.Enquiries(ctx)
	if err != nil {
		return err
	}
	m.adopt(*list)
	return nil
}

// SetStatus moves an enquiry through the workflow.
func (m *Manager) SetStatus(ctx context.Context, id, status string) error {
	if !m.begin() {
		return nil
	}
	defer m.finish()

	list, err := m.client.UpdateEnquiry(ctx, id, enqmodel.UpdateRequest{Status: &status})
	if err != nil {
		widget.SetFeedback(m.feedback, apiclient.ResolveErrorMessage(err, managerFallback), true)
		return err
	}
	widget.SetFeedback(m.feedback, "", false)
	m.adopt(*list)
	return nil
}

// OpenEditor opens the inline detail editor for one enquiry; any editor
// already open on another row closes.
func (m *Manager) OpenEditor(id string) {
	m.mu.Lock()
	known := false
	for _, e := range m.model.Enquiries {
		if e.ID == id {
			known = true
			break
		}
	}
	if !known {
		m.mu.Unlock()
		return
	}
	m.editorID = id
	m.mu.Unlock()
	m.render()
}

// CloseEditor dismisses the inline editor.
func (m *Manager) CloseEditor() {
	m.mu.Lock()
	m.editorID = ""
	m.mu.Unlock()
	m.render()
}

// EditingID returns the id of the enquiry whose editor is open, or "".
func (m *Manager) EditingID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editorID
}

// SaveEdit patches every detail field of the enquiry and closes its editor.
func (m *Manager) SaveEdit(ctx context.Context, id, name, email, phone, message string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	message = strings.TrimSpace(message)
	if name == "" {
		widget.SetFeedback(m.feedback, enqmodel.ErrNameRequired.Error(), true)
		return nil
	}
	if email == "" {
		widget.SetFeedback(m.feedback, enqmodel.ErrEmailRequired.Error(), true)
		return nil
	}
	if message == "" {
		widget.SetFeedback(m.feedback, enqmodel.ErrMessageRequired.Error(), true)
		return nil
	}
	if !m.begin() {
		return nil
	}
	defer m.finish()

	list, err := m.client.UpdateEnquiry(ctx, id, enqmodel.UpdateRequest{
		Name:    &name,
		Email:   &email,
		Phone:   &phone,
		Message: &message,
	})
	if err != nil {
		widget.SetFeedback(m.feedback, apiclient.ResolveErrorMessage(err, managerFallback), true)
		return err
	}

	m.mu.Lock()
	if m.editorID == id {
		m.editorID = ""
	}
	m.mu.Unlock()
	widget.SetFeedback(m.feedback, "", false)
	m.adopt(*list)
	return nil
}

// Delete removes an enquiry. If its editor was open, the editor closes.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if !m.begin() {
		return nil
	}
	defer m.finish()

	list, err := m.client.DeleteEnquiry(ctx, id)
	if err != nil {
		widget.SetFeedback(m.feedback, apiclient.ResolveErrorMessage(err, managerFallback), true)
		return err
	}

	m.mu.Lock()
	if m.editorID == id {
		m.editorID = ""
	}
	m.mu.Unlock()
	widget.SetFeedback(m.feedback, "", false)
	m.adopt(*list)
	return nil
}

func (m *Manager) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return false
	}
	m.busy = true
	return true
}

func (m *Manager) finish() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

func (m *Manager) adopt(list enqmodel.List) {
	m.mu.Lock()
	m.model = list
	// The open editor survives a refresh only while its row still exists.
	if m.editorID != "" {
		found := false
		for _, e := range list.Enquiries {
			if e.ID == m.editorID {
				found = true
				break
			}
		}
		if !found {
			m.editorID = ""
		}
	}
	m.mu.Unlock()
	m.render()
}

func statusLabel(status string) string {
	switch status {
	case enqmodel.StatusInProgress:
		return "In progress"
	case enqmodel.StatusComplete:
		return "Complete"
	default:
		return "New"
	}
}

func (m *Manager) render() {
	m.mu.Lock()
	list := m.model
	editorID := m.editorID
	m.mu.Unlock()

	m.counts.SetText(fmt.Sprintf("%d open / %d total", list.Counts.Open, list.Counts.Total))

	var b strings.Builder
	if len(list.Enquiries) == 0 {
		b.WriteString(`<p class="empty">No enquiries yet.</p>`)
	}
	for _, e := range list.Enquiries {
		var actions strings.Builder
		for _, action := range enqmodel.AllowedTransitions(e.Status) {
			fmt.Fprintf(&actions,
				`<button data-role="enquiry-action" data-enquiry-id="%s" data-status="%s">%s</button>`,
				format.EscapeHTML(e.ID), action.Status, action.Label)
		}

		editor := ""
		if e.ID == editorID {
			editor = fmt.Sprintf(
				`<div class="editor" data-role="enquiry-editor" data-enquiry-id="%s">`+
					`<input data-role="edit-name" value="%s">`+
					`<input data-role="edit-email" value="%s">`+
					`<input data-role="edit-phone" value="%s">`+
					`<textarea data-role="edit-message">%s</textarea>`+
					`<button data-role="edit-save">Save</button>`+
					`<button data-role="edit-cancel">Cancel</button></div>`,
				format.EscapeHTML(e.ID),
				format.EscapeHTML(e.Name),
				format.EscapeHTML(e.Email),
				format.EscapeHTML(e.Phone),
				format.EscapeHTML(e.Message),
			)
		}

		fmt.Fprintf(&b,
			`<li data-role="enquiry-row" data-enquiry-id="%s" class="status-%s">`+
				`<span class="name">%s</span><span class="email">%s</span>`+
				`<span class="status" data-role="enquiry-status">%s</span>`+
				`<p class="message">%s</p>%s`+
				`<button data-role="enquiry-edit" data-enquiry-id="%s">Edit</button>`+
				`<button data-role="enquiry-delete" data-enquiry-id="%s">Delete</button>%s</li>`,
			format.EscapeHTML(e.ID),
			format.EscapeHTML(e.Status),
			format.EscapeHTML(e.Name),
			format.EscapeHTML(e.Email),
			statusLabel(e.Status),
			format.EscapeHTML(e.Message),
			actions.String(),
			format.EscapeHTML(e.ID),
			format.EscapeHTML(e.ID),
			editor,
		)
	}
	if err := m.list.SetHTML(b.String()); err != nil {
		m.logger.Warn("enquiry list render failed", "error", err)
	}
}
