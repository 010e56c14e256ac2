package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsteps/platform/internal/apiclient"
	chatmodel "github.com/pawsteps/platform/internal/chat"
	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/widget"
	"github.com/pawsteps/platform/pkg/logging"
)

const chatMarkup = `<html><body>
<div data-role="chat-widget">
  <p data-role="chat-status"></p>
  <div data-role="chat-log"></div>
  <input data-role="chat-input">
  <button data-role="chat-send">Send</button>
  <p data-role="chat-feedback"></p>
</div>
</body></html>`

// mockAPI records calls and serves canned transcripts.
type mockAPI struct {
	transcript *chatmodel.Transcript
	postErr    error
	getCalls   int
	postCalls  int
}

func (m *mockAPI) ChatMessages(_ context.Context, _ string) (*chatmodel.Transcript, error) {
	m.getCalls++
	if m.transcript == nil {
		return nil, errors.New("no transcript")
	}
	return m.transcript, nil
}

func (m *mockAPI) PostChatMessage(_ context.Context, _, message string) (*chatmodel.Transcript, error) {
	m.postCalls++
	if m.postErr != nil {
		return nil, m.postErr
	}
	t := *m.transcript
	t.Messages = append(t.Messages, chatmodel.Message{Role: chatmodel.RoleVisitor, Content: message})
	return &t, nil
}

func mountChat(t *testing.T, api *mockAPI, visitorID string) (*Widget, *page.Document) {
	t.Helper()
	doc, err := page.ParseString(chatMarkup)
	require.NoError(t, err)
	w, err := New(doc, api, visitorID, time.Hour, logging.Discard())
	require.NoError(t, err)
	return w, doc
}

func TestNewReturnsNotPresentWithoutMount(t *testing.T) {
	doc, err := page.ParseString(`<html><body><p>no chat here</p></body></html>`)
	require.NoError(t, err)

	_, err = New(doc, &mockAPI{}, "visitor-1", time.Hour, logging.Discard())
	assert.ErrorIs(t, err, widget.ErrNotPresent)
}

func TestNewFailsFastOnBrokenMarkup(t *testing.T) {
	doc, err := page.ParseString(`<html><body><div data-role="chat-widget"></div></body></html>`)
	require.NoError(t, err)

	_, err = New(doc, &mockAPI{}, "visitor-1", time.Hour, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat-log")
}

func TestRefreshRendersTranscript(t *testing.T) {
	api := &mockAPI{transcript: &chatmodel.Transcript{
		Messages: []chatmodel.Message{
			{Role: chatmodel.RoleVisitor, Content: "hello"},
			{Role: chatmodel.RoleAI, Content: "hi there"},
		},
		Autopilot: true,
	}}
	w, doc := mountChat(t, api, "visitor-1")

	require.NoError(t, w.Refresh(context.Background()))

	root := doc.FindRole(Role)
	assert.Equal(t, 2, root.CountRole("chat-message"))
	assert.Equal(t, "Autopilot replies instantly", doc.FindRole("chat-status").Text())
}

func TestStatusReflectsLiveModeAndReturningVisitor(t *testing.T) {
	api := &mockAPI{transcript: &chatmodel.Transcript{IsReturning: true}}
	w, doc := mountChat(t, api, "visitor-1")

	require.NoError(t, w.Refresh(context.Background()))
	assert.Equal(t, "Welcome back! A team member will reply shortly", doc.FindRole("chat-status").Text())
}

func TestSendRejectsWhitespaceWithoutNetworkCall(t *testing.T) {
	api := &mockAPI{transcript: &chatmodel.Transcript{}}
	w, doc := mountChat(t, api, "visitor-1")

	require.NoError(t, w.Send(context.Background(), "   \n\t"))

	assert.Zero(t, api.postCalls)
	assert.Equal(t, "Please type a message first.", doc.FindRole("chat-feedback").Text())
	assert.True(t, doc.FindRole("chat-feedback").HasClass("error"))
}

func TestSendPostsAndRerenders(t *testing.T) {
	api := &mockAPI{transcript: &chatmodel.Transcript{Autopilot: true}}
	w, doc := mountChat(t, api, "visitor-1")

	require.NoError(t, w.Send(context.Background(), "  can you walk Rex?  "))

	assert.Equal(t, 1, api.postCalls)
	assert.Equal(t, 1, doc.FindRole(Role).CountRole("chat-message"))
	// Controls restored after the request completes.
	assert.Equal(t, "", doc.FindRole("chat-input").Attr("disabled"))
}

func TestSendFailureShowsServerMessageAndRestoresControls(t *testing.T) {
	api := &mockAPI{
		transcript: &chatmodel.Transcript{},
		postErr:    &apiclient.StatusError{StatusCode: 400, Body: []byte(`{"error":"Message is required."}`)},
	}
	w, doc := mountChat(t, api, "visitor-1")

	err := w.Send(context.Background(), "hello")
	require.Error(t, err)

	assert.Equal(t, "Message is required.", doc.FindRole("chat-feedback").Text())
	assert.True(t, doc.FindRole("chat-feedback").HasClass("error"))
	assert.Equal(t, "", doc.FindRole("chat-input").Attr("disabled"))
	assert.Equal(t, "", doc.FindRole("chat-send").Attr("disabled"))
}

func TestEmptyVisitorIDNeverTouchesNetwork(t *testing.T) {
	api := &mockAPI{transcript: &chatmodel.Transcript{}}
	w, doc := mountChat(t, api, "")

	require.NoError(t, w.Refresh(context.Background()))
	w.Start(context.Background())
	defer w.Stop()

	assert.Zero(t, api.getCalls)
	assert.Contains(t, doc.FindRole("chat-feedback").Text(), "browser storage")
	assert.Equal(t, "disabled", doc.FindRole("chat-input").Attr("disabled"))
}

func TestFirstLoadFailureSurfacesNotice(t *testing.T) {
	api := &mockAPI{}
	w, doc := mountChat(t, api, "visitor-1")

	require.Error(t, w.Refresh(context.Background()))
	assert.Equal(t, "Chat is unavailable right now.", doc.FindRole("chat-feedback").Text())

	// Once a transcript has loaded, later poll failures keep the stale view.
	api.transcript = &chatmodel.Transcript{}
	require.NoError(t, w.Refresh(context.Background()))
	api.transcript = nil
	require.Error(t, w.Refresh(context.Background()))
	assert.Equal(t, "", doc.FindRole("chat-feedback").Text())
}
