package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClock() func() time.Time {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
}

func TestVisitorLabel(t *testing.T) {
	assert.Equal(t, "AB12CD", visitorLabel("visitor-ab12cd"))
	assert.Equal(t, "XYZ", visitorLabel("xyz"))
}

func TestPostAppendsAutopilotReply(t *testing.T) {
	state := NewState(CannedResponder{Text: "Hello from autopilot"}).WithClock(testClock())

	transcript, err := state.Post(context.Background(), "visitor-1", "Do you walk puppies?")
	require.NoError(t, err)

	require.Len(t, transcript.Messages, 2)
	assert.Equal(t, RoleVisitor, transcript.Messages[0].Role)
	assert.Equal(t, RoleAI, transcript.Messages[1].Role)
	assert.Equal(t, "Hello from autopilot", transcript.Messages[1].Content)
	assert.True(t, transcript.Autopilot)
	// Autopilot answers instantly, so nobody is waiting.
	assert.Equal(t, 0, transcript.WaitingCount)
	assert.False(t, transcript.IsReturning)
}

func TestPostValidation(t *testing.T) {
	state := NewState(nil)

	_, err := state.Post(context.Background(), "visitor-1", "   ")
	assert.ErrorIs(t, err, ErrMessageRequired)

	_, err = state.Post(context.Background(), "", "hello")
	assert.ErrorIs(t, err, ErrVisitorIDRequired)
}

func TestReturningVisitorLatches(t *testing.T) {
	state := NewState(nil).WithClock(testClock())
	ctx := context.Background()

	first, err := state.Post(ctx, "visitor-1", "first")
	require.NoError(t, err)
	assert.False(t, first.IsReturning)

	second, err := state.Post(ctx, "visitor-1", "second")
	require.NoError(t, err)
	assert.True(t, second.IsReturning)
}

func TestWaitingRequiresAutopilotOff(t *testing.T) {
	state := NewState(nil).WithClock(testClock())
	ctx := context.Background()

	_, err := state.Post(ctx, "visitor-1", "anyone there?")
	require.NoError(t, err)
	assert.Equal(t, 0, state.Status().WaitingCount)

	state.UpdateSettings(Settings{Autopilot: false})
	assert.Equal(t, 1, state.Status().WaitingCount)

	// An agent reply clears the waiting flag.
	_, err = state.Respond("visitor-1", "Right here!")
	require.NoError(t, err)
	assert.Equal(t, 0, state.Status().WaitingCount)
}

func TestRespondRejectedWhileAutopilotOn(t *testing.T) {
	state := NewState(nil)

	_, err := state.Respond("visitor-1", "hello")
	assert.ErrorIs(t, err, ErrAutopilotEnabled)
}

func TestTranscriptCap(t *testing.T) {
	state := NewState(nil).WithClock(testClock())
	state.UpdateSettings(Settings{Autopilot: false})
	ctx := context.Background()

	for i := 0; i < maxTranscript+25; i++ {
		_, err := state.Post(ctx, "visitor-1", fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	transcript, err := state.Transcript("visitor-1")
	require.NoError(t, err)
	assert.Len(t, transcript.Messages, maxTranscript)
	assert.Equal(t, fmt.Sprintf("message %d", maxTranscript+24), transcript.Messages[maxTranscript-1].Content)
}

func TestConversationsSortedByLastSeen(t *testing.T) {
	state := NewState(nil).WithClock(testClock())
	ctx := context.Background()

	_, err := state.Post(ctx, "visitor-old", "early")
	require.NoError(t, err)
	_, err = state.Post(ctx, "visitor-new", "late")
	require.NoError(t, err)

	list := state.Conversations()
	require.Len(t, list.Visitors, 2)
	assert.Equal(t, "visitor-new", list.Visitors[0].VisitorID)
	assert.Equal(t, "visitor-old", list.Visitors[1].VisitorID)
	require.NotNil(t, list.Visitors[0].LastMessage)
	assert.Equal(t, "late", list.Visitors[0].LastMessage.Content)
}

func TestUpdateSettingsTrimsContext(t *testing.T) {
	state := NewState(nil)

	updated := state.UpdateSettings(Settings{Autopilot: false, BusinessContext: "  walks in north London  "})
	assert.Equal(t, "walks in north London", updated.BusinessContext)
	assert.False(t, updated.Autopilot)
}
