package site

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsteps/platform/internal/apiclient"
	"github.com/pawsteps/platform/internal/bans"
	"github.com/pawsteps/platform/internal/chat"
	"github.com/pawsteps/platform/internal/config"
	"github.com/pawsteps/platform/internal/enquiries"
	"github.com/pawsteps/platform/internal/httpapi"
	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/pubsub"
	"github.com/pawsteps/platform/internal/schedule"
	"github.com/pawsteps/platform/internal/storage"
	"github.com/pawsteps/platform/pkg/logging"
	"github.com/pawsteps/platform/web"
)

func testConfig() *config.Config {
	return &config.Config{
		VisitorChatPoll:   time.Hour,
		AdminRosterPoll:   time.Hour,
		AdminMessagesPoll: time.Hour,
		SchedulePoll:      time.Hour,
		EnquiriesPoll:     time.Hour,
		BansPoll:          time.Hour,
	}
}

func startAPI(t *testing.T) (string, *schedule.Store) {
	t.Helper()
	sched := schedule.NewStore()
	router := httpapi.New(&httpapi.Config{
		Logger:    logging.Discard(),
		Chat:      chat.NewState(chat.CannedResponder{}),
		Schedule:  sched,
		Enquiries: enquiries.NewStore(),
		Bans:      bans.NewStore(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL, sched
}

func mountPage(t *testing.T, name, baseURL string) (*page.Document, deps) {
	t.Helper()
	raw, err := web.Page(name)
	require.NoError(t, err)
	doc, err := page.ParseString(string(raw))
	require.NoError(t, err)

	d := deps{
		client: apiclient.New(baseURL, apiclient.WithLogger(logging.Discard())),
		store:  storage.NewMemory(),
		bus:    pubsub.New(),
	}
	return doc, d
}

type deps struct {
	client *apiclient.Client
	store  *storage.Memory
	bus    *pubsub.Bus
}

func TestMountBookPageAgainstLiveAPI(t *testing.T) {
	baseURL, sched := startAPI(t)
	_, err := sched.CreateSlot(&schedule.CreateSlotRequest{
		Date: "2026-09-01", Time: "09:30", DurationMinutes: 60, Price: 25,
	})
	require.NoError(t, err)

	doc, d := mountPage(t, "book", baseURL)
	host, err := Mount(doc, Deps{
		Client:    d.client,
		Config:    testConfig(),
		Bus:       d.bus,
		Store:     d.store,
		VisitorID: "visitor-test-1",
		Logger:    logging.Discard(),
	})
	require.NoError(t, err)

	// The book page hosts the nav, the chat widget, and the slot list.
	require.Len(t, host.Widgets(), 3)
	require.NoError(t, host.RefreshAll(context.Background()))
	defer host.StopAll()

	assert.Equal(t, 1, doc.FindRole("slot-cards").CountRole("slot-card"))
	assert.NotEmpty(t, doc.FindRole("chat-status").Text())
}

func TestMountAdminPageAgainstLiveAPI(t *testing.T) {
	baseURL, _ := startAPI(t)

	doc, d := mountPage(t, "admin", baseURL)
	host, err := Mount(doc, Deps{
		Client:    d.client,
		Config:    testConfig(),
		Bus:       d.bus,
		Store:     d.store,
		VisitorID: "visitor-test-1",
		Logger:    logging.Discard(),
	})
	require.NoError(t, err)

	// Nav, cards, admin chat, ban manager, admin schedule, enquiry manager.
	require.Len(t, host.Widgets(), 6)
	require.NoError(t, host.RefreshAll(context.Background()))
	defer host.StopAll()

	assert.Equal(t, "0", doc.FindRole("admin-waiting-count").Text())
	assert.Equal(t, "0 open / 0 total", doc.FindRole("enquiry-counts").Text())
}

func TestMountContactPagePublishesAcrossWidgets(t *testing.T) {
	baseURL, _ := startAPI(t)

	doc, d := mountPage(t, "contact", baseURL)
	host, err := Mount(doc, Deps{
		Client:    d.client,
		Config:    testConfig(),
		Bus:       d.bus,
		Store:     d.store,
		VisitorID: "visitor-test-1",
		Logger:    logging.Discard(),
	})
	require.NoError(t, err)
	require.NoError(t, host.RefreshAll(context.Background()))
	defer host.StopAll()

	// Nav, chat widget, contact form.
	assert.Len(t, host.Widgets(), 3)
}
