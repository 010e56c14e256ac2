// Package widget holds the shared plumbing for the page components: mount
// errors, the feedback element helper, and the host that runs every widget
// found on a page.
package widget

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pawsteps/platform/internal/page"
)

// ErrNotPresent is returned by a widget constructor when the page carries no
// mount point for it. Pages only host the widgets they declare, so callers
// skip the widget rather than failing.
var ErrNotPresent = errors.New("widget: mount point not present")

// RequireRole finds a child mount point and fails fast when the page markup
// is missing it, instead of sprinkling nil checks through every method.
func RequireRole(root *page.Element, role string) (*page.Element, error) {
	el := root.FindRole(role)
	if el == nil {
		return nil, fmt.Errorf("widget: markup is missing data-role=%q", role)
	}
	return el, nil
}

// SetFeedback writes a user-facing message into a widget's feedback element,
// toggling the error class. An empty message clears it.
func SetFeedback(el *page.Element, message string, isError bool) {
	el.SetText(message)
	el.ToggleClass("error", isError)
}

// Widget is a mounted page component with a polling lifecycle.
type Widget interface {
	Name() string
	Refresh(ctx context.Context) error
	Start(ctx context.Context)
	Stop()
}

// Host owns every widget mounted on one document and starts and stops them
// together.
type Host struct {
	widgets []Widget
}

// NewHost creates an empty host.
func NewHost() *Host {
	return &Host{}
}

// Add registers a mounted widget.
func (h *Host) Add(w Widget) {
	h.widgets = append(h.widgets, w)
}

// Widgets returns the mounted widgets.
func (h *Host) Widgets() []Widget {
	return h.widgets
}

// RefreshAll refreshes every widget concurrently and returns the first
// failure. Used by one-shot prerendering.
func (h *Host) RefreshAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range h.widgets {
		w := w
		g.Go(func() error {
			if err := w.Refresh(ctx); err != nil {
				return fmt.Errorf("%s: %w", w.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// StartAll begins polling on every widget.
func (h *Host) StartAll(ctx context.Context) {
	for _, w := range h.widgets {
		w.Start(ctx)
	}
}

// StopAll tears the widgets down, cancelling their poll loops.
func (h *Host) StopAll() {
	for _, w := range h.widgets {
		w.Stop()
	}
}
