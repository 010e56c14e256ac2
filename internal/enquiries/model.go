// Package enquiries tracks contact-form submissions through the staff
// workflow: new -> in_progress -> complete, with reopening allowed.
package enquiries

import (
	"encoding/json"
	"strings"
)

// Enquiry statuses.
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// Enquiry is a contact-form submission.
type Enquiry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"`
}

// MarshalJSON includes the legacy "completed" boolean older admin builds
// still read.
func (e Enquiry) MarshalJSON() ([]byte, error) {
	type alias Enquiry
	return json.Marshal(struct {
		alias
		Completed bool `json:"completed"`
	}{alias: alias(e), Completed: e.Status == StatusComplete})
}

// NormalizeStatus maps stored or submitted statuses, including the legacy
// completed flag, onto the three-state workflow.
func NormalizeStatus(status string, legacyCompleted bool) string {
	switch strings.TrimSpace(status) {
	case StatusInProgress:
		return StatusInProgress
	case StatusComplete:
		return StatusComplete
	case StatusNew:
		return StatusNew
	}
	if legacyCompleted {
		return StatusComplete
	}
	return StatusNew
}

// Action is a workflow button offered for an enquiry.
type Action struct {
	Label  string
	Status string
}

// AllowedTransitions returns the context-sensitive workflow actions. A
// completed enquiry offers only reopening; picking it back up means
// reopening it first.
func AllowedTransitions(status string) []Action {
	if status == StatusComplete {
		return []Action{{Label: "Reopen", Status: StatusNew}}
	}
	var actions []Action
	if status != StatusInProgress {
		actions = append(actions, Action{Label: "Mark in progress", Status: StatusInProgress})
	}
	actions = append(actions, Action{Label: "Mark complete", Status: StatusComplete})
	if status != StatusNew {
		actions = append(actions, Action{Label: "Reopen", Status: StatusNew})
	}
	return actions
}

// CreateRequest is the public contact-form payload.
type CreateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Validate validates the contact-form submission
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(r.Email) == "" {
		return ErrEmailRequired
	}
	if strings.TrimSpace(r.Message) == "" {
		return ErrMessageRequired
	}
	return nil
}

// UpdateRequest is the admin PATCH payload: either a status change or a
// full-field detail edit. Legacy builds send "completed" instead of status.
type UpdateRequest struct {
	Status    *string `json:"status,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Message   *string `json:"message,omitempty"`
}

// Counts summarizes the admin badge numbers.
type Counts struct {
	Open  int `json:"open"`
	Total int `json:"total"`
}

// List is the admin list view: enquiries plus badge counts.
type List struct {
	Enquiries []Enquiry `json:"enquiries"`
	Counts    Counts    `json:"counts"`
}
