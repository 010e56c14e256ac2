package adminchat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsteps/platform/internal/apiclient"
	chatmodel "github.com/pawsteps/platform/internal/chat"
	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/widget"
	"github.com/pawsteps/platform/pkg/logging"
)

const consoleMarkup = `<html><body>
<div data-role="admin-chat">
  <span data-role="admin-waiting-count"></span>
  <p data-role="admin-chat-mode"></p>
  <ul data-role="admin-visitors"></ul>
  <div data-role="admin-chat-log"></div>
  <input data-role="admin-reply-input">
  <button data-role="admin-reply-send">Reply</button>
  <p data-role="admin-chat-feedback"></p>
</div>
</body></html>`

// mockAPI serves a canned roster and per-visitor transcripts.
type mockAPI struct {
	roster      *chatmodel.ConversationList
	transcripts map[string]*chatmodel.Transcript
	respondErr  error

	rosterCalls   int
	messageCalls  int
	respondCalls  int
	lastRespondTo string
}

func (m *mockAPI) Conversations(_ context.Context) (*chatmodel.ConversationList, error) {
	m.rosterCalls++
	if m.roster == nil {
		return nil, errors.New("no roster")
	}
	return m.roster, nil
}

func (m *mockAPI) ChatMessages(_ context.Context, visitorID string) (*chatmodel.Transcript, error) {
	m.messageCalls++
	if t, ok := m.transcripts[visitorID]; ok {
		return t, nil
	}
	return nil, errors.New("unknown visitor")
}

func (m *mockAPI) Respond(_ context.Context, visitorID, message string) (*chatmodel.Transcript, error) {
	m.respondCalls++
	m.lastRespondTo = visitorID
	if m.respondErr != nil {
		return nil, m.respondErr
	}
	return &chatmodel.Transcript{
		Messages:  []chatmodel.Message{{Role: chatmodel.RoleAgent, Content: message}},
		VisitorID: visitorID,
	}, nil
}

func (m *mockAPI) ChatSettings(_ context.Context) (*chatmodel.Settings, error) {
	return &chatmodel.Settings{Autopilot: m.roster != nil && m.roster.Autopilot}, nil
}

func (m *mockAPI) SaveChatSettings(_ context.Context, settings chatmodel.Settings) (*chatmodel.Settings, error) {
	if m.roster != nil {
		m.roster.Autopilot = settings.Autopilot
	}
	return &settings, nil
}

func roster(autopilot bool, visitors ...chatmodel.VisitorSummary) *chatmodel.ConversationList {
	waiting := 0
	for _, v := range visitors {
		if v.Waiting {
			waiting++
		}
	}
	return &chatmodel.ConversationList{Autopilot: autopilot, WaitingCount: waiting, Visitors: visitors}
}

func mountConsole(t *testing.T, api *mockAPI) (*Console, *page.Document) {
	t.Helper()
	doc, err := page.ParseString(consoleMarkup)
	require.NoError(t, err)
	c, err := New(doc, api, time.Hour, time.Hour, logging.Discard())
	require.NoError(t, err)
	return c, doc
}

func TestNewReturnsNotPresentWithoutMount(t *testing.T) {
	doc, err := page.ParseString(`<html><body><p>public page</p></body></html>`)
	require.NoError(t, err)

	_, err = New(doc, &mockAPI{}, time.Hour, time.Hour, logging.Discard())
	assert.ErrorIs(t, err, widget.ErrNotPresent)
}

func TestNewFailsFastOnBrokenMarkup(t *testing.T) {
	doc, err := page.ParseString(`<html><body><div data-role="admin-chat"></div></body></html>`)
	require.NoError(t, err)

	_, err = New(doc, &mockAPI{}, time.Hour, time.Hour, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin-visitors")
}

func TestRefreshAutoSelectsWaitingVisitor(t *testing.T) {
	api := &mockAPI{roster: roster(false,
		chatmodel.VisitorSummary{VisitorID: "v-quiet", Label: "ABC123"},
		chatmodel.VisitorSummary{VisitorID: "v-waiting", Label: "DEF456", Waiting: true},
	)}
	c, doc := mountConsole(t, api)

	require.NoError(t, c.Refresh(context.Background()))

	assert.Equal(t, "v-waiting", c.SelectedVisitor())
	assert.Equal(t, 2, doc.FindRole("admin-visitors").CountRole("admin-visitor"))
	assert.Equal(t, 1, doc.FindRole("admin-visitors").CountRole("waiting-badge"))
	assert.Equal(t, "1", doc.FindRole("admin-waiting-count").Text())
}

func TestRosterPreviewTruncatesOnRuneBoundary(t *testing.T) {
	api := &mockAPI{roster: roster(false,
		chatmodel.VisitorSummary{
			VisitorID:   "v1",
			Label:       "ABC123",
			LastMessage: &chatmodel.Message{Role: chatmodel.RoleVisitor, Content: strings.Repeat("héllo wörld ", 10)},
		},
	)}
	c, doc := mountConsole(t, api)

	require.NoError(t, c.Refresh(context.Background()))

	preview := doc.FindRole("admin-visitors").FindRole("admin-visitor").Text()
	assert.True(t, utf8.ValidString(preview))
	assert.Contains(t, preview, "…")
	assert.NotContains(t, preview, "�")
}

func TestRefreshKeepsCurrentSelection(t *testing.T) {
	api := &mockAPI{roster: roster(false,
		chatmodel.VisitorSummary{VisitorID: "v-1", Label: "A"},
		chatmodel.VisitorSummary{VisitorID: "v-2", Label: "B"},
	)}
	c, _ := mountConsole(t, api)

	require.NoError(t, c.Refresh(context.Background()))
	c.SelectVisitor("v-2")

	// A new waiting visitor must not steal the open conversation.
	api.roster = roster(false,
		chatmodel.VisitorSummary{VisitorID: "v-1", Label: "A", Waiting: true},
		chatmodel.VisitorSummary{VisitorID: "v-2", Label: "B"},
	)
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, "v-2", c.SelectedVisitor())
}

func TestRefreshFallsBackWhenSelectionDisappears(t *testing.T) {
	api := &mockAPI{roster: roster(false,
		chatmodel.VisitorSummary{VisitorID: "v-1", Label: "A"},
	)}
	c, _ := mountConsole(t, api)
	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, "v-1", c.SelectedVisitor())

	api.roster = roster(false, chatmodel.VisitorSummary{VisitorID: "v-2", Label: "B"})
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, "v-2", c.SelectedVisitor())

	api.roster = roster(false)
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, "", c.SelectedVisitor())
}

func TestSelectUnknownVisitorIsIgnored(t *testing.T) {
	api := &mockAPI{roster: roster(false, chatmodel.VisitorSummary{VisitorID: "v-1", Label: "A"})}
	c, _ := mountConsole(t, api)
	require.NoError(t, c.Refresh(context.Background()))

	c.SelectVisitor("v-nope")
	assert.Equal(t, "v-1", c.SelectedVisitor())
}

func TestRefreshMessagesRendersSelectedTranscript(t *testing.T) {
	api := &mockAPI{
		roster: roster(false, chatmodel.VisitorSummary{VisitorID: "v-1", Label: "A"}),
		transcripts: map[string]*chatmodel.Transcript{
			"v-1": {Messages: []chatmodel.Message{
				{Role: chatmodel.RoleVisitor, Content: "hi"},
				{Role: chatmodel.RoleAgent, Content: "hello"},
			}},
		},
	}
	c, doc := mountConsole(t, api)
	require.NoError(t, c.Refresh(context.Background()))
	require.NoError(t, c.RefreshMessages(context.Background()))

	assert.Equal(t, 2, doc.FindRole("admin-chat-log").CountRole("admin-message"))
}

func TestRefreshMessagesNoopWithoutSelection(t *testing.T) {
	api := &mockAPI{roster: roster(false)}
	c, _ := mountConsole(t, api)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.RefreshMessages(context.Background()))
	assert.Zero(t, api.messageCalls)
}

func TestReplyBlockedWhileAutopilotOn(t *testing.T) {
	api := &mockAPI{roster: roster(true, chatmodel.VisitorSummary{VisitorID: "v-1", Label: "A"})}
	c, doc := mountConsole(t, api)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.Reply(context.Background(), "hello"))

	assert.Zero(t, api.respondCalls)
	assert.Equal(t, autopilotReplyBlocked, doc.FindRole("admin-chat-feedback").Text())
	assert.Equal(t, "disabled", doc.FindRole("admin-reply-input").Attr("disabled"))
}

func TestReplyRequiresSelection(t *testing.T) {
	api := &mockAPI{roster: roster(false)}
	c, _ := mountConsole(t, api)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.Reply(context.Background(), "hello"))
	assert.Zero(t, api.respondCalls)
}

func TestReplySendsToSelectedVisitor(t *testing.T) {
	api := &mockAPI{roster: roster(false, chatmodel.VisitorSummary{VisitorID: "v-1", Label: "A"})}
	c, doc := mountConsole(t, api)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.Reply(context.Background(), "  on our way  "))

	assert.Equal(t, "v-1", api.lastRespondTo)
	assert.Equal(t, 1, doc.FindRole("admin-chat-log").CountRole("admin-message"))
	assert.Equal(t, "", doc.FindRole("admin-reply-input").Attr("disabled"))
	assert.Equal(t, "", doc.FindRole("admin-reply-input").Attr("value"))
}

func TestReplyBadRequestShowsAutopilotMessage(t *testing.T) {
	api := &mockAPI{
		roster:     roster(false, chatmodel.VisitorSummary{VisitorID: "v-1", Label: "A"}),
		respondErr: &apiclient.StatusError{StatusCode: 400, Body: []byte(`{"error":"Autopilot is enabled. Disable it to send live replies."}`)},
	}
	c, doc := mountConsole(t, api)
	require.NoError(t, c.Refresh(context.Background()))

	err := c.Reply(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, autopilotReplyBlocked, doc.FindRole("admin-chat-feedback").Text())
	// Live mode still selected, so controls come back.
	assert.Equal(t, "", doc.FindRole("admin-reply-input").Attr("disabled"))
}

func TestSaveSettingsUpdatesModeImmediately(t *testing.T) {
	api := &mockAPI{roster: roster(false, chatmodel.VisitorSummary{VisitorID: "v-1", Label: "A"})}
	c, doc := mountConsole(t, api)
	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, modeLive, doc.FindRole("admin-chat-mode").Text())

	require.NoError(t, c.SaveSettings(context.Background(), true, "walks in NW3"))

	// No roster re-fetch needed for the mode text to flip.
	assert.Equal(t, modeAutopilot, doc.FindRole("admin-chat-mode").Text())
	assert.Equal(t, "disabled", doc.FindRole("admin-reply-send").Attr("disabled"))
}
