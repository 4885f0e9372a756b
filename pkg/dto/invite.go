package dto

import (
	"github.com/google/uuid"
)

type PendingRequestResponse struct {
	ID        uuid.UUID     `json:"id"`
	TeamID    uuid.UUID     `json:"team_id"`
	Kind      string        `json:"kind"`
	CreatedAt string        `json:"created_at"`
	Team      *TeamResponse `json:"team,omitempty"`
	Sender    *UserResponse `json:"sender,omitempty"`
	Invitee   *UserResponse `json:"invitee,omitempty"`
}

type InviteResultResponse struct {
	ID      uuid.UUID `json:"id"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}

type RespondInviteRequest struct {
	Accept bool `json:"accept"`
}

type RespondApprovalRequest struct {
	Approve bool `json:"approve"`
}
