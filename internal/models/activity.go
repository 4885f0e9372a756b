package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity event types, team scope.
const (
	EventTeamCreated   = "team_created"
	EventTeamDeleted   = "team_deleted"
	EventMemberJoined  = "member_joined"
	EventMemberLeft    = "member_left"
	EventMemberRemoved = "member_removed"
	EventRoleUpdated   = "role_updated"
)

type ActivityLog struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	EventType string     `json:"event_type"`
	Content   string     `json:"content"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	BoardID   *uuid.UUID `json:"board_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	User      *User      `json:"user,omitempty"`
}
