package dto

import (
	"github.com/google/uuid"
)

type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateTeamSettingsRequest struct {
	IsInviteApprovalRequired bool `json:"is_invite_approval_required"`
}

type TeamResponse struct {
	ID                       uuid.UUID `json:"id"`
	Name                     string    `json:"name"`
	Description              string    `json:"description"`
	OwnerID                  uuid.UUID `json:"owner_id"`
	IsInviteApprovalRequired bool      `json:"is_invite_approval_required"`
	Role                     string    `json:"role,omitempty"`
}

type TeamMemberResponse struct {
	ID       uuid.UUID    `json:"id"`
	UserID   uuid.UUID    `json:"user_id"`
	Role     string       `json:"role"`
	JoinedAt string       `json:"joined_at"`
	User     UserResponse `json:"user"`
}

type InviteMemberRequest struct {
	Email string `json:"email"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}
