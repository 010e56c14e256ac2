package chat

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// maxTranscript caps each visitor's stored history.
const maxTranscript = 200

// Responder produces the autopilot reply to a visitor message. The real AI
// integration lives server-side in production; the development state uses
// CannedResponder.
type Responder interface {
	Reply(ctx context.Context, visitorID, message, businessContext string) (string, error)
}

// CannedResponder returns a fixed acknowledgement, standing in for the AI
// assistant during development and tests.
type CannedResponder struct {
	Text string
}

func (c CannedResponder) Reply(context.Context, string, string, string) (string, error) {
	if c.Text != "" {
		return c.Text, nil
	}
	return "Thanks for your message! One of the team will be in touch shortly — in the meantime, you can browse our walk times on the booking page.", nil
}

type visitorState struct {
	id          string
	label       string
	messages    []Message
	createdAt   string
	lastSeen    string
	isReturning bool
}

// State is the in-memory conversation store behind the development API.
type State struct {
	mu        sync.RWMutex
	settings  Settings
	visitors  map[string]*visitorState
	responder Responder
	now       func() time.Time
}

// NewState creates a State with autopilot on, mirroring a fresh install.
func NewState(responder Responder) *State {
	if responder == nil {
		responder = CannedResponder{}
	}
	return &State{
		settings:  Settings{Autopilot: true},
		visitors:  make(map[string]*visitorState),
		responder: responder,
		now:       time.Now,
	}
}

// WithClock overrides the timestamp source for tests.
func (s *State) WithClock(now func() time.Time) *State {
	s.now = now
	return s
}

func (s *State) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000000") + "Z"
}

// visitorLabel derives the short roster label from the visitor id.
func visitorLabel(visitorID string) string {
	if len(visitorID) <= 6 {
		return strings.ToUpper(visitorID)
	}
	return strings.ToUpper(visitorID[len(visitorID)-6:])
}

func (s *State) getOrCreate(visitorID string) *visitorState {
	v, ok := s.visitors[visitorID]
	if !ok {
		now := s.timestamp()
		v = &visitorState{
			id:        visitorID,
			label:     visitorLabel(visitorID),
			createdAt: now,
			lastSeen:  now,
		}
		s.visitors[visitorID] = v
	} else {
		v.lastSeen = s.timestamp()
	}
	return v
}

func (s *State) append(v *visitorState, role, content string) {
	msg := Message{Role: role, Content: content, Timestamp: s.timestamp()}
	v.messages = append(v.messages, msg)
	if len(v.messages) > maxTranscript {
		v.messages = v.messages[len(v.messages)-maxTranscript:]
	}
	v.lastSeen = msg.Timestamp
}

// waiting reports whether the visitor's latest message is still unanswered
// by a live agent. Autopilot answers instantly, so nobody waits while it is on.
func (s *State) waiting(v *visitorState) bool {
	if s.settings.Autopilot {
		return false
	}
	return len(v.messages) > 0 && v.messages[len(v.messages)-1].Role == RoleVisitor
}

func (s *State) waitingCount() int {
	count := 0
	for _, v := range s.visitors {
		if s.waiting(v) {
			count++
		}
	}
	return count
}

func (s *State) transcript(v *visitorState) Transcript {
	messages := make([]Message, len(v.messages))
	copy(messages, v.messages)
	return Transcript{
		Messages:     messages,
		Autopilot:    s.settings.Autopilot,
		VisitorID:    v.id,
		Label:        v.label,
		IsReturning:  v.isReturning,
		WaitingCount: s.waitingCount(),
	}
}

// Transcript returns the visitor's history, creating the conversation on
// first contact.
func (s *State) Transcript(visitorID string) (Transcript, error) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return Transcript{}, ErrVisitorIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript(s.getOrCreate(visitorID)), nil
}

// Post records a visitor message. While autopilot is on, the responder's
// reply is appended immediately after.
func (s *State) Post(ctx context.Context, visitorID, message string) (Transcript, error) {
	message = strings.TrimSpace(message)
	visitorID = strings.TrimSpace(visitorID)
	if message == "" {
		return Transcript{}, ErrMessageRequired
	}
	if visitorID == "" {
		return Transcript{}, ErrVisitorIDRequired
	}

	s.mu.Lock()
	v := s.getOrCreate(visitorID)
	if len(v.messages) > 0 {
		v.isReturning = true
	}
	s.append(v, RoleVisitor, message)
	autopilot := s.settings.Autopilot
	businessContext := s.settings.BusinessContext
	s.mu.Unlock()

	if autopilot {
		reply, err := s.responder.Reply(ctx, visitorID, message, businessContext)
		if err != nil || strings.TrimSpace(reply) == "" {
			reply = "I’m having a little trouble answering right now. Please share your details and we’ll follow up personally!"
		}
		s.mu.Lock()
		s.append(v, RoleAI, reply)
		s.mu.Unlock()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript(v), nil
}

// Respond records a live agent reply. Rejected while autopilot is on.
func (s *State) Respond(visitorID, message string) (Transcript, error) {
	message = strings.TrimSpace(message)
	visitorID = strings.TrimSpace(visitorID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings.Autopilot {
		return Transcript{}, ErrAutopilotEnabled
	}
	if message == "" {
		return Transcript{}, ErrMessageRequired
	}
	if visitorID == "" {
		return Transcript{}, ErrVisitorIDRequired
	}

	v := s.getOrCreate(visitorID)
	s.append(v, RoleAgent, message)
	return s.transcript(v), nil
}

// Settings returns the current chat settings.
func (s *State) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings replaces the chat settings, trimming the business context.
func (s *State) UpdateSettings(settings Settings) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = Settings{
		Autopilot:       settings.Autopilot,
		BusinessContext: strings.TrimSpace(settings.BusinessContext),
	}
	return s.settings
}

// Conversations returns the admin roster, most recently active first.
func (s *State) Conversations() ConversationList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visitors := make([]VisitorSummary, 0, len(s.visitors))
	for _, v := range s.visitors {
		var last *Message
		if len(v.messages) > 0 {
			m := v.messages[len(v.messages)-1]
			last = &m
		}
		visitors = append(visitors, VisitorSummary{
			VisitorID:    v.id,
			Label:        v.label,
			LastSeen:     v.lastSeen,
			MessageCount: len(v.messages),
			Waiting:      s.waiting(v),
			IsReturning:  v.isReturning,
			LastMessage:  last,
		})
	}
	sort.Slice(visitors, func(i, j int) bool {
		return visitors[i].LastSeen > visitors[j].LastSeen
	})

	return ConversationList{
		Autopilot:    s.settings.Autopilot,
		WaitingCount: s.waitingCount(),
		Visitors:     visitors,
	}
}

// Status returns the waiting badge view.
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{WaitingCount: s.waitingCount(), Autopilot: s.settings.Autopilot}
}
