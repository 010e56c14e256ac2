package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pawsteps/platform/internal/bans"
	"github.com/pawsteps/platform/internal/chat"
	"github.com/pawsteps/platform/internal/enquiries"
	"github.com/pawsteps/platform/internal/schedule"
)

// --- chat ---

// ChatMessages fetches the visitor's transcript.
func (c *Client) ChatMessages(ctx context.Context, visitorID string) (*chat.Transcript, error) {
	var out chat.Transcript
	path := "/api/chat/messages?visitor_id=" + url.QueryEscape(visitorID)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostChatMessage sends a visitor message and returns the refreshed transcript.
func (c *Client) PostChatMessage(ctx context.Context, visitorID, message string) (*chat.Transcript, error) {
	body := map[string]string{"message": message, "visitor_id": visitorID}
	var out chat.Transcript
	if err := c.do(ctx, "POST", "/api/chat", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatStatus fetches the waiting badge counts.
func (c *Client) ChatStatus(ctx context.Context) (*chat.Status, error) {
	var out chat.Status
	if err := c.getJSON(ctx, "/api/chat/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Respond sends a live agent reply to a visitor.
func (c *Client) Respond(ctx context.Context, visitorID, message string) (*chat.Transcript, error) {
	body := map[string]string{"message": message, "visitor_id": visitorID}
	var out chat.Transcript
	if err := c.do(ctx, "POST", "/api/chat/respond", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatSettings fetches the autopilot settings.
func (c *Client) ChatSettings(ctx context.Context) (*chat.Settings, error) {
	var out chat.Settings
	if err := c.getJSON(ctx, "/api/admin/chat-settings", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveChatSettings stores the autopilot settings, returning the saved values.
func (c *Client) SaveChatSettings(ctx context.Context, settings chat.Settings) (*chat.Settings, error) {
	var out chat.Settings
	if err := c.do(ctx, "POST", "/api/admin/chat-settings", settings, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Conversations fetches the admin visitor roster.
func (c *Client) Conversations(ctx context.Context) (*chat.ConversationList, error) {
	var out chat.ConversationList
	if err := c.getJSON(ctx, "/api/admin/conversations", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- bans ---

// BannedVisitors fetches the ban list.
func (c *Client) BannedVisitors(ctx context.Context) (*bans.List, error) {
	var out bans.List
	if err := c.getJSON(ctx, "/api/admin/banned-visitors", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BanVisitor creates (or re-activates) a ban.
func (c *Client) BanVisitor(ctx context.Context, identifier, reason string) (*bans.List, error) {
	body := bans.BanRequest{Identifier: identifier, Reason: reason}
	var out bans.List
	if err := c.do(ctx, "POST", "/api/admin/banned-visitors", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnbanVisitor deactivates a ban without deleting the record.
func (c *Client) UnbanVisitor(ctx context.Context, id string) (*bans.List, error) {
	var out bans.List
	path := fmt.Sprintf("/api/admin/banned-visitors/%s/unban", url.PathEscape(id))
	if err := c.do(ctx, "POST", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBan removes a ban record entirely.
func (c *Client) DeleteBan(ctx context.Context, id string) (*bans.List, error) {
	var out bans.List
	path := "/api/admin/banned-visitors/" + url.PathEscape(id)
	if err := c.do(ctx, "DELETE", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- schedule ---

type slotList struct {
	Slots []schedule.Slot `json:"slots"`
}

// Slots fetches the open slot list.
func (c *Client) Slots(ctx context.Context) ([]schedule.Slot, error) {
	var out slotList
	if err := c.getJSON(ctx, "/api/slots", &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

// Book submits a booking, returning the refreshed open slot list.
func (c *Client) Book(ctx context.Context, req schedule.BookingRequest) ([]schedule.Slot, error) {
	var out slotList
	if err := c.do(ctx, "POST", "/api/bookings", req, &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

// AdminSchedule fetches all slots plus all bookings.
func (c *Client) AdminSchedule(ctx context.Context) (*schedule.Snapshot, error) {
	var out schedule.Snapshot
	if err := c.getJSON(ctx, "/api/admin/schedule", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSlot adds a bookable slot, returning the refreshed slot list.
func (c *Client) CreateSlot(ctx context.Context, req schedule.CreateSlotRequest) ([]schedule.Slot, error) {
	var out slotList
	if err := c.do(ctx, "POST", "/api/admin/slots", req, &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

// DeleteSlot removes a slot, returning the remaining slots.
func (c *Client) DeleteSlot(ctx context.Context, id string) ([]schedule.Slot, error) {
	var out slotList
	path := "/api/admin/slots/" + url.PathEscape(id)
	if err := c.do(ctx, "DELETE", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

type bookingList struct {
	Bookings []schedule.Booking `json:"bookings"`
}

// SetBookingStatus toggles a booking's confirmed flag, returning all bookings.
func (c *Client) SetBookingStatus(ctx context.Context, id string, confirmed bool) ([]schedule.Booking, error) {
	body := map[string]bool{"confirmed": confirmed}
	var out bookingList
	path := fmt.Sprintf("/api/admin/bookings/%s/status", url.PathEscape(id))
	if err := c.do(ctx, "POST", path, body, &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

// --- enquiries ---

// CreateEnquiry submits the public contact form.
func (c *Client) CreateEnquiry(ctx context.Context, req enquiries.CreateRequest) error {
	return c.do(ctx, "POST", "/api/enquiries", req, nil)
}

// Enquiries fetches the admin enquiry list with badge counts.
func (c *Client) Enquiries(ctx context.Context) (*enquiries.List, error) {
	var out enquiries.List
	if err := c.getJSON(ctx, "/api/admin/enquiries", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEnquiry PATCHes a status move or a full-field edit.
func (c *Client) UpdateEnquiry(ctx context.Context, id string, req enquiries.UpdateRequest) (*enquiries.List, error) {
	var out enquiries.List
	path := "/api/admin/enquiries/" + url.PathEscape(id)
	if err := c.do(ctx, "PATCH", path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEnquiry removes an enquiry.
func (c *Client) DeleteEnquiry(ctx context.Context, id string) (*enquiries.List, error) {
	var out enquiries.List
	path := "/api/admin/enquiries/" + url.PathEscape(id)
	if err := c.do(ctx, "DELETE", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
