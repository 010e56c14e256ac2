// Package chrome mounts the page furniture that needs no API: the
// collapsible site navigation and the expandable admin cards.
package chrome

import (
	"context"
	"sync"

	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/widget"
)

// Mount attributes.
const (
	NavRole   = "site-nav"
	CardsRole = "admin-cards"
)

// Nav is the collapsible navigation menu.
type Nav struct {
	root   *page.Element
	toggle *page.Element
	menu   *page.Element

	mu   sync.Mutex
	open bool
}

// NewNav mounts the navigation on doc.
func NewNav(doc *page.Document) (*Nav, error) {
	root := doc.FindRole(NavRole)
	if root == nil {
		return nil, widget.ErrNotPresent
	}

	n := &Nav{root: root}
	var err error
	if n.toggle, err = widget.RequireRole(root, "nav-toggle"); err != nil {
		return nil, err
	}
	if n.menu, err = widget.RequireRole(root, "nav-menu"); err != nil {
		return nil, err
	}
	n.apply()
	return n, nil
}

// Name identifies the widget in host logs.
func (n *Nav) Name() string { return NavRole }

// Refresh is a no-op; the nav has nothing to load.
func (n *Nav) Refresh(context.Context) error { return nil }

// Start is a no-op; the nav does not poll.
func (n *Nav) Start(context.Context) {}

// Stop is a no-op.
func (n *Nav) Stop() {}

// Toggle flips the menu open or closed.
func (n *Nav) Toggle() {
	n.mu.Lock()
	n.open = !n.open
	n.mu.Unlock()
	n.apply()
}

// Close collapses the menu (used after following a link).
func (n *Nav) Close() {
	n.mu.Lock()
	n.open = false
	n.mu.Unlock()
	n.apply()
}

// IsOpen reports whether the menu is expanded.
func (n *Nav) IsOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.open
}

func (n *Nav) apply() {
	n.mu.Lock()
	open := n.open
	n.mu.Unlock()

	n.menu.ToggleClass("open", open)
	if open {
		n.toggle.SetAttr("aria-expanded", "true")
	} else {
		n.toggle.SetAttr("aria-expanded", "false")
	}
}

// Cards manages the expandable admin dashboard cards. At most one card is
// expanded; expanding in detail mode adds a document-level class so the
// stylesheet can hide the rest of the dashboard behind a back action.
type Cards struct {
	root *page.Element
	body *page.Element

	mu       sync.Mutex
	expanded string
	detail   bool
}

// NewCards mounts the card manager on doc.
func NewCards(doc *page.Document) (*Cards, error) {
	root := doc.FindRole(CardsRole)
	if root == nil {
		return nil, widget.ErrNotPresent
	}
	return &Cards{root: root, body: doc.Body()}, nil
}

// Name identifies the widget in host logs.
func (c *Cards) Name() string { return CardsRole }

// Refresh is a no-op; cards are driven by user actions.
func (c *Cards) Refresh(context.Context) error { return nil }

// Start is a no-op; cards do not poll.
func (c *Cards) Start(context.Context) {}

// Stop is a no-op.
func (c *Cards) Stop() {}

// Expand opens the named card, collapsing whichever card was open before.
// Expanding the open card collapses it.
func (c *Cards) Expand(name string) {
	card := c.find(name)
	if card == nil {
		return
	}

	c.mu.Lock()
	if c.expanded == name {
		c.expanded = ""
	} else {
		c.expanded = name
	}
	c.mu.Unlock()
	c.apply()
}

// OpenDetail expands the named card full-page, hiding the other cards.
func (c *Cards) OpenDetail(name string) {
	if c.find(name) == nil {
		return
	}
	c.mu.Lock()
	c.expanded = name
	c.detail = true
	c.mu.Unlock()
	c.apply()
}

// Back leaves detail mode, keeping the card expanded in place.
func (c *Cards) Back() {
	c.mu.Lock()
	c.detail = false
	c.mu.Unlock()
	c.apply()
}

// Expanded returns the open card's name, or "".
func (c *Cards) Expanded() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded
}

func (c *Cards) find(name string) *page.Element {
	for _, card := range c.cards() {
		if card.Attr("data-card") == name {
			return card
		}
	}
	return nil
}

// cards re-scans the tree each time so re-rendered markup stays addressable.
func (c *Cards) cards() []*page.Element {
	return c.root.FindRoleAll("admin-card")
}

func (c *Cards) apply() {
	c.mu.Lock()
	expanded := c.expanded
	detail := c.detail
	c.mu.Unlock()

	for _, card := range c.cards() {
		card.ToggleClass("expanded", card.Attr("data-card") == expanded)
	}
	if c.body != nil {
		c.body.ToggleClass("card-detail", detail && expanded != "")
	}
}
