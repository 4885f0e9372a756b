package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamhub/teamhub-api/internal/middleware"
	"github.com/teamhub/teamhub-api/internal/services"
	"github.com/teamhub/teamhub-api/pkg/dto"
)

type InviteHandler struct {
	inviteService InviteServiceInterface
}

func NewInviteHandler(inviteService InviteServiceInterface) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// GetMyInvites returns the caller's pending invites and, for owners, any
// approval requests waiting on them.
func (h *InviteHandler) GetMyInvites(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	requests, err := h.inviteService.GetPendingForUser(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get pending invites")
		return
	}

	_ = c.JSON(200, pendingRequestsToDTO(requests))
}

func (h *InviteHandler) Respond(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	inviteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid invite id")
		return
	}

	var req dto.RespondInviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.inviteService.RespondToInvite(context.Background(), inviteID, userID, req.Accept); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			c.NotFound("invite not found")
		case errors.Is(err, services.ErrAlreadyMember):
			_ = c.JSON(409, map[string]string{"error": "you are already a member of this team"})
		default:
			c.InternalServerError("failed to respond to invite")
		}
		return
	}

	message := "invite declined"
	if req.Accept {
		message = "invite accepted"
	}
	_ = c.JSON(200, map[string]string{"message": message})
}

func (h *InviteHandler) RespondApproval(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	approvalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid approval id")
		return
	}

	var req dto.RespondApprovalRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.inviteService.ResolveApproval(context.Background(), approvalID, userID, req.Approve); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			c.NotFound("approval request not found")
		default:
			c.InternalServerError("failed to resolve approval")
		}
		return
	}

	message := "request denied"
	if req.Approve {
		message = "request approved, invite sent"
	}
	_ = c.JSON(200, map[string]string{"message": message})
}
