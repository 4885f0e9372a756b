package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds. Info carries a plain message, invite and approval mirror
// a pending request into the recipient's inbox, reminder is a rate-limited nudge.
const (
	NotificationInfo     = "info"
	NotificationInvite   = "invite"
	NotificationApproval = "approval"
	NotificationReminder = "reminder"
)

type Notification struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	SenderID    *uuid.UUID `json:"sender_id,omitempty"`
	Kind        string     `json:"kind"`
	Message     string     `json:"message"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	IsRead      bool       `json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Pending request kinds. An invite is addressed to the prospective member,
// an approval is addressed to the team owner on behalf of an admin.
const (
	PendingInvite   = "invite"
	PendingApproval = "approval"
)

// PendingRequest is the workflow-state carrier for the invitation flow. It is
// stored separately from inbox notifications so that inbox housekeeping can
// never consume workflow state. At most one pending request exists per
// (team, invitee) pair.
type PendingRequest struct {
	ID          uuid.UUID `json:"id"`
	TeamID      uuid.UUID `json:"team_id"`
	Kind        string    `json:"kind"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	InviteeID   uuid.UUID `json:"invitee_id"`
	CreatedAt   time.Time `json:"created_at"`
	Team        *Team     `json:"team,omitempty"`
	Sender      *User     `json:"sender,omitempty"`
	Invitee     *User     `json:"invitee,omitempty"`
}
