// Package site mounts every widget a page carries onto its parsed document.
package site

import (
	"errors"

	"github.com/pawsteps/platform/internal/apiclient"
	"github.com/pawsteps/platform/internal/config"
	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/pubsub"
	"github.com/pawsteps/platform/internal/storage"
	"github.com/pawsteps/platform/internal/widget"
	"github.com/pawsteps/platform/internal/widget/adminchat"
	banswidget "github.com/pawsteps/platform/internal/widget/bans"
	chatwidget "github.com/pawsteps/platform/internal/widget/chat"
	"github.com/pawsteps/platform/internal/widget/chrome"
	enquirieswidget "github.com/pawsteps/platform/internal/widget/enquiries"
	schedulewidget "github.com/pawsteps/platform/internal/widget/schedule"
	"github.com/pawsteps/platform/pkg/logging"
)

// Deps carries everything the widgets need.
type Deps struct {
	Client    *apiclient.Client
	Config    *config.Config
	Bus       *pubsub.Bus
	Store     storage.Store
	VisitorID string
	Logger    *logging.Logger
}

// Mount builds a widget host for the document, attaching every widget whose
// mount point the page carries. Widgets whose mount is absent are skipped;
// any other mount failure aborts, since it means broken markup.
func Mount(doc *page.Document, deps Deps) (*widget.Host, error) {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	cfg := deps.Config

	host := widget.NewHost()
	add := func(w widget.Widget, err error) error {
		if err != nil {
			if errors.Is(err, widget.ErrNotPresent) {
				return nil
			}
			return err
		}
		host.Add(w)
		return nil
	}

	if err := add(chrome.NewNav(doc)); err != nil {
		return nil, err
	}
	if err := add(chrome.NewCards(doc)); err != nil {
		return nil, err
	}
	if err := add(chatwidget.New(doc, deps.Client, deps.VisitorID, cfg.VisitorChatPoll, deps.Logger)); err != nil {
		return nil, err
	}
	if err := add(adminchat.New(doc, deps.Client, cfg.AdminRosterPoll, cfg.AdminMessagesPoll, deps.Logger)); err != nil {
		return nil, err
	}
	if err := add(banswidget.New(doc, deps.Client, cfg.BansPoll, deps.Logger)); err != nil {
		return nil, err
	}
	if err := add(schedulewidget.NewVisitor(doc, deps.Client, cfg.SchedulePoll, deps.Logger)); err != nil {
		return nil, err
	}
	if err := add(schedulewidget.NewAdmin(doc, deps.Client, cfg.SchedulePoll, deps.Logger)); err != nil {
		return nil, err
	}
	if err := add(enquirieswidget.NewForm(doc, deps.Client, deps.Bus, deps.Store, deps.Logger)); err != nil {
		return nil, err
	}
	if err := add(enquirieswidget.NewManager(doc, deps.Client, deps.Bus, cfg.EnquiriesPoll, deps.Logger)); err != nil {
		return nil, err
	}

	return host, nil
}
