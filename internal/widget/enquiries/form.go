// Package enquiries mounts the public contact form and the admin enquiry
// manager. The two talk through the page bus: a successful submission pokes
// the manager so an admin previewing the site sees it straight away.
package enquiries

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pawsteps/platform/internal/apiclient"
	enqmodel "github.com/pawsteps/platform/internal/enquiries"
	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/pubsub"
	"github.com/pawsteps/platform/internal/storage"
	"github.com/pawsteps/platform/internal/widget"
	"github.com/pawsteps/platform/pkg/logging"
)

// FormRole is the contact form's mount attribute.
const FormRole = "contact-form"

const (
	submitThanks   = "Thanks! We'll get back to you within one working day."
	submitFallback = "Couldn't send your message. Please try again."
)

// FormAPI is the slice of the site client the contact form uses.
type FormAPI interface {
	CreateEnquiry(ctx context.Context, req enqmodel.CreateRequest) error
}

// ContactForm is the public enquiry form component.
type ContactForm struct {
	client FormAPI
	bus    *pubsub.Bus
	store  storage.Store
	logger *logging.Logger

	name     *page.Element
	email    *page.Element
	phone    *page.Element
	message  *page.Element
	submit   *page.Element
	feedback *page.Element

	// cacheSubmissions keeps the legacy local copy of sent enquiries that
	// the old admin page read before the API existed.
	cacheSubmissions bool

	mu         sync.Mutex
	submitting bool
}

// NewForm mounts the contact form on doc. bus and store may be nil; a nil
// store disables the legacy submission cache.
func NewForm(doc *page.Document, client FormAPI, bus *pubsub.Bus, store storage.Store, logger *logging.Logger) (*ContactForm, error) {
	root := doc.FindRole(FormRole)
	if root == nil {
		return nil, widget.ErrNotPresent
	}
	if logger == nil {
		logger = logging.Default()
	}

	f := &ContactForm{
		client:           client,
		bus:              bus,
		store:            store,
		logger:           logger,
		cacheSubmissions: store != nil,
	}

	var err error
	if f.name, err = widget.RequireRole(root, "contact-name"); err != nil {
		return nil, err
	}
	if f.email, err = widget.RequireRole(root, "contact-email"); err != nil {
		return nil, err
	}
	if f.phone, err = widget.RequireRole(root, "contact-phone"); err != nil {
		return nil, err
	}
	if f.message, err = widget.RequireRole(root, "contact-message"); err != nil {
		return nil, err
	}
	if f.submit, err = widget.RequireRole(root, "contact-submit"); err != nil {
		return nil, err
	}
	if f.feedback, err = widget.RequireRole(root, "contact-feedback"); err != nil {
		return nil, err
	}
	return f, nil
}

// Name identifies the widget in host logs.
func (f *ContactForm) Name() string { return FormRole }

// Refresh is a no-op; the form has nothing to load.
func (f *ContactForm) Refresh(context.Context) error { return nil }

// Start is a no-op; the form does not poll.
func (f *ContactForm) Start(context.Context) {}

// Stop is a no-op.
func (f *ContactForm) Stop() {}

// Submit validates and sends the enquiry. Validation failures stay local.
// Success publishes enquiries.updated and clears the form.
func (f *ContactForm) Submit(ctx context.Context, name, email, phone, message string) error {
	req := enqmodel.CreateRequest{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Phone:   strings.TrimSpace(phone),
		Message: strings.TrimSpace(message),
	}
	if err := req.Validate(); err != nil {
		widget.SetFeedback(f.feedback, err.Error(), true)
		return nil
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil
	}
	f.submitting = true
	f.mu.Unlock()

	f.submit.SetAttr("disabled", "disabled")
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
		f.submit.RemoveAttr("disabled")
	}()

	if err := f.client.CreateEnquiry(ctx, req); err != nil {
		widget.SetFeedback(f.feedback, apiclient.ResolveErrorMessage(err, submitFallback), true)
		return err
	}

	if f.cacheSubmissions {
		f.cacheSubmission(req)
	}
	if f.bus != nil {
		f.bus.Publish(pubsub.TopicEnquiriesUpdated)
	}

	f.name.SetAttr("value", "")
	f.email.SetAttr("value", "")
	f.phone.SetAttr("value", "")
	f.message.SetText("")
	widget.SetFeedback(f.feedback, submitThanks, false)
	return nil
}

// cacheSubmission appends the sent enquiry to the legacy local cache.
// Cache failures are logged and otherwise ignored.
func (f *ContactForm) cacheSubmission(req enqmodel.CreateRequest) {
	type cached struct {
		enqmodel.CreateRequest
		SentAt string `json:"sent_at"`
	}

	var entries []cached
	if raw, ok, err := f.store.Get(storage.KeyEnquiryCache); err != nil {
		f.logger.Debug("enquiry cache read failed", "error", err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			entries = nil
		}
	}

	entries = append(entries, cached{
		CreateRequest: req,
		SentAt:        time.Now().UTC().Format(time.RFC3339),
	})
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := f.store.Set(storage.KeyEnquiryCache, string(raw)); err != nil {
		f.logger.Debug("enquiry cache write failed", "error", err)
	}
}
