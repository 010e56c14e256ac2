// Package chat holds the live-chat domain: transcript messages, visitor
// conversation summaries, the global autopilot settings, and the in-memory
// conversation state backing the development API.
package chat

// Message roles. Autopilot replies carry RoleAI; live agent replies RoleAgent.
const (
	RoleVisitor = "visitor"
	RoleAI      = "ai"
	RoleAgent   = "agent"
)

// Message is a single transcript entry, ordered by arrival.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// VisitorSummary describes one conversation in the admin roster.
type VisitorSummary struct {
	VisitorID    string   `json:"visitor_id"`
	Label        string   `json:"label"`
	LastSeen     string   `json:"last_seen"`
	MessageCount int      `json:"message_count"`
	Waiting      bool     `json:"waiting"`
	IsReturning  bool     `json:"is_returning"`
	LastMessage  *Message `json:"last_message"`
}

// Settings is the global chat configuration the admin console edits.
type Settings struct {
	Autopilot       bool   `json:"autopilot"`
	BusinessContext string `json:"business_context"`
}

// Transcript is the visitor-scoped view returned by the messages and post
// endpoints.
type Transcript struct {
	Messages     []Message `json:"messages"`
	Autopilot    bool      `json:"autopilot"`
	VisitorID    string    `json:"visitor_id"`
	Label        string    `json:"label"`
	IsReturning  bool      `json:"is_returning"`
	WaitingCount int       `json:"waiting_count"`
}

// ConversationList is the admin roster view.
type ConversationList struct {
	Autopilot    bool             `json:"autopilot"`
	WaitingCount int              `json:"waiting_count"`
	Visitors     []VisitorSummary `json:"visitors"`
}

// Status is the lightweight badge view used by the admin navigation.
type Status struct {
	WaitingCount int  `json:"waiting_count"`
	Autopilot    bool `json:"autopilot"`
}
