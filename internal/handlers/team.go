package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamhub/teamhub-api/internal/middleware"
	"github.com/teamhub/teamhub-api/internal/models"
	"github.com/teamhub/teamhub-api/internal/services"
	"github.com/teamhub/teamhub-api/pkg/dto"
)

type TeamHandler struct {
	teamService     TeamServiceInterface
	inviteService   InviteServiceInterface
	userService     UserServiceInterface
	emailService    EmailServiceInterface
	activityService ActivityServiceInterface
	baseURL         string
}

func NewTeamHandler(teamService TeamServiceInterface, inviteService InviteServiceInterface, userService UserServiceInterface, emailService EmailServiceInterface, activityService ActivityServiceInterface, baseURL string) *TeamHandler {
	return &TeamHandler{
		teamService:     teamService,
		inviteService:   inviteService,
		userService:     userService,
		emailService:    emailService,
		activityService: activityService,
		baseURL:         baseURL,
	}
}

func (h *TeamHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	team, err := h.teamService.Create(context.Background(), req.Name, req.Description, userID)
	if err != nil {
		c.InternalServerError("failed to create team")
		return
	}

	_ = c.JSON(201, dto.TeamResponse{
		ID:                       team.ID,
		Name:                     team.Name,
		Description:              team.Description,
		OwnerID:                  team.OwnerID,
		IsInviteApprovalRequired: team.IsInviteApprovalRequired,
		Role:                     models.RoleOwner,
	})
}

func (h *TeamHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teams, roles, err := h.teamService.GetUserTeams(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get teams")
		return
	}

	response := make([]dto.TeamResponse, len(teams))
	for i, team := range teams {
		response[i] = dto.TeamResponse{
			ID:                       team.ID,
			Name:                     team.Name,
			Description:              team.Description,
			OwnerID:                  team.OwnerID,
			IsInviteApprovalRequired: team.IsInviteApprovalRequired,
			Role:                     roles[i],
		}
	}

	_ = c.JSON(200, response)
}

func (h *TeamHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	role, err := h.teamService.GetMemberRole(context.Background(), teamID, userID)
	if err != nil {
		c.NotFound("team not found")
		return
	}

	team, err := h.teamService.GetByID(context.Background(), teamID)
	if err != nil {
		c.NotFound("team not found")
		return
	}

	_ = c.JSON(200, dto.TeamResponse{
		ID:                       team.ID,
		Name:                     team.Name,
		Description:              team.Description,
		OwnerID:                  team.OwnerID,
		IsInviteApprovalRequired: team.IsInviteApprovalRequired,
		Role:                     role,
	})
}

func (h *TeamHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.UpdateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	team, err := h.teamService.Update(context.Background(), teamID, userID, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTeamNotFound):
			c.NotFound("team not found")
		case errors.Is(err, services.ErrForbidden):
			_ = c.JSON(403, map[string]string{"error": "only the owner can update the team"})
		default:
			c.InternalServerError("failed to update team")
		}
		return
	}

	_ = c.JSON(200, dto.TeamResponse{
		ID:                       team.ID,
		Name:                     team.Name,
		Description:              team.Description,
		OwnerID:                  team.OwnerID,
		IsInviteApprovalRequired: team.IsInviteApprovalRequired,
		Role:                     models.RoleOwner,
	})
}

func (h *TeamHandler) UpdateSettings(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.UpdateTeamSettingsRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.teamService.UpdateSettings(context.Background(), teamID, userID, req.IsInviteApprovalRequired); err != nil {
		switch {
		case errors.Is(err, services.ErrTeamNotFound):
			c.NotFound("team not found")
		case errors.Is(err, services.ErrForbidden):
			_ = c.JSON(403, map[string]string{"error": "only the owner can change team settings"})
		default:
			c.InternalServerError("failed to update settings")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "settings updated"})
}

func (h *TeamHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	if err := h.teamService.Delete(context.Background(), teamID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrTeamNotFound):
			c.NotFound("team not found")
		case errors.Is(err, services.ErrForbidden):
			_ = c.JSON(403, map[string]string{"error": "only the owner can delete the team"})
		default:
			c.InternalServerError("failed to delete team")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "team deleted"})
}

func (h *TeamHandler) GetMembers(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	isMember, err := h.teamService.IsMember(context.Background(), teamID, userID)
	if err != nil || !isMember {
		c.NotFound("team not found")
		return
	}

	members, err := h.teamService.GetMembers(context.Background(), teamID)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	response := make([]dto.TeamMemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.TeamMemberResponse{
			ID:       m.ID,
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z07:00"),
			User: dto.UserResponse{
				ID:        m.User.ID,
				Email:     m.User.Email,
				Name:      m.User.Name,
				AvatarURL: m.User.AvatarURL,
			},
		}
	}

	_ = c.JSON(200, response)
}

func (h *TeamHandler) InviteMember(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.InviteMemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" {
		c.BadRequest("email is required")
		return
	}

	request, err := h.inviteService.Invite(context.Background(), teamID, userID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.NotFound("no user with that email")
		case errors.Is(err, services.ErrTeamNotFound):
			c.NotFound("team not found")
		case errors.Is(err, services.ErrAlreadyMember):
			_ = c.JSON(409, map[string]string{"error": "user is already a team member"})
		case errors.Is(err, services.ErrAlreadyPending):
			_ = c.JSON(409, map[string]string{"error": "an invite is already pending for this user"})
		case errors.Is(err, services.ErrForbidden):
			_ = c.JSON(403, map[string]string{"error": "you are not allowed to invite members"})
		default:
			c.InternalServerError("failed to invite member")
		}
		return
	}

	message := "invite sent"
	if request.Kind == models.PendingApproval {
		message = "request forwarded to the team owner for approval"
	} else {
		h.sendInviteEmail(request, userID, req.Email)
	}

	_ = c.JSON(201, dto.InviteResultResponse{
		ID:      request.ID,
		Kind:    request.Kind,
		Message: message,
	})
}

// sendInviteEmail is best-effort: the pending invite already exists, a mail
// failure only loses the out-of-band copy.
func (h *TeamHandler) sendInviteEmail(request *models.PendingRequest, senderID uuid.UUID, inviteeEmail string) {
	team, err := h.teamService.GetByID(context.Background(), request.TeamID)
	if err != nil {
		return
	}
	sender, err := h.userService.GetByID(context.Background(), senderID)
	if err != nil {
		return
	}
	inviteURL := h.baseURL + "/invites/" + request.ID.String()
	_ = h.emailService.SendTeamInvite(inviteeEmail, team.Name, sender.Name, inviteURL)
}

func (h *TeamHandler) GetTeamInvites(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	role, err := h.teamService.GetMemberRole(context.Background(), teamID, userID)
	if err != nil || models.RoleRank(role) < models.RoleRank(models.RoleAdmin) {
		_ = c.JSON(403, map[string]string{"error": "only owners and admins can view pending invites"})
		return
	}

	requests, err := h.inviteService.GetPendingForTeam(context.Background(), teamID)
	if err != nil {
		c.InternalServerError("failed to get pending invites")
		return
	}

	_ = c.JSON(200, pendingRequestsToDTO(requests))
}

func (h *TeamHandler) CancelInvite(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	requestID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		c.BadRequest("invalid invite id")
		return
	}

	if err := h.inviteService.CancelPending(context.Background(), teamID, userID, requestID); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			c.NotFound("pending request not found")
		case errors.Is(err, services.ErrForbidden):
			_ = c.JSON(403, map[string]string{"error": "only owners and admins can cancel invites"})
		default:
			c.InternalServerError("failed to cancel invite")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invite cancelled"})
}

func (h *TeamHandler) RemoveMember(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	targetUserID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	if err := h.teamService.RemoveMember(context.Background(), teamID, userID, targetUserID); err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			c.NotFound("member not found")
		case errors.Is(err, services.ErrForbidden):
			_ = c.JSON(403, map[string]string{"error": "only the owner can remove members"})
		case errors.Is(err, services.ErrInvalidOperation):
			_ = c.JSON(409, map[string]string{"error": "this member cannot be removed"})
		default:
			c.InternalServerError("failed to remove member")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

func (h *TeamHandler) LeaveTeam(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	if err := h.teamService.LeaveTeam(context.Background(), teamID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrTeamNotFound):
			c.NotFound("team not found")
		case errors.Is(err, services.ErrMemberNotFound):
			c.NotFound("you are not a member of this team")
		case errors.Is(err, services.ErrInvalidOperation):
			_ = c.JSON(409, map[string]string{"error": "the owner must transfer ownership or delete the team before leaving"})
		default:
			c.InternalServerError("failed to leave team")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "left team"})
}

func (h *TeamHandler) ChangeRole(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	targetUserID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	var req dto.ChangeRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.teamService.ChangeMemberRole(context.Background(), teamID, userID, targetUserID, req.Role); err != nil {
		switch {
		case errors.Is(err, services.ErrTeamNotFound):
			c.NotFound("team not found")
		case errors.Is(err, services.ErrMemberNotFound):
			c.NotFound("member not found")
		case errors.Is(err, services.ErrForbidden):
			_ = c.JSON(403, map[string]string{"error": "only the owner can change member roles"})
		case errors.Is(err, services.ErrInvalidOperation):
			_ = c.JSON(409, map[string]string{"error": "owners cannot change their own role"})
		default:
			c.InternalServerError("failed to change role")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "role updated"})
}

func (h *TeamHandler) GetActivities(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	isMember, err := h.teamService.IsMember(context.Background(), teamID, userID)
	if err != nil || !isMember {
		c.NotFound("team not found")
		return
	}

	activities, err := h.activityService.GetTeamActivities(context.Background(), teamID, 20)
	if err != nil {
		c.InternalServerError("failed to get activities")
		return
	}

	_ = c.JSON(200, activities)
}

func pendingRequestsToDTO(requests []models.PendingRequest) []dto.PendingRequestResponse {
	response := make([]dto.PendingRequestResponse, len(requests))
	for i, req := range requests {
		r := dto.PendingRequestResponse{
			ID:        req.ID,
			TeamID:    req.TeamID,
			Kind:      req.Kind,
			CreatedAt: req.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if req.Team != nil {
			r.Team = &dto.TeamResponse{
				ID:                       req.Team.ID,
				Name:                     req.Team.Name,
				Description:              req.Team.Description,
				OwnerID:                  req.Team.OwnerID,
				IsInviteApprovalRequired: req.Team.IsInviteApprovalRequired,
			}
		}
		if req.Sender != nil {
			r.Sender = &dto.UserResponse{
				ID:        req.Sender.ID,
				Email:     req.Sender.Email,
				Name:      req.Sender.Name,
				AvatarURL: req.Sender.AvatarURL,
			}
		}
		if req.Invitee != nil {
			r.Invitee = &dto.UserResponse{
				ID:        req.Invitee.ID,
				Email:     req.Invitee.Email,
				Name:      req.Invitee.Name,
				AvatarURL: req.Invitee.AvatarURL,
			}
		}
		response[i] = r
	}
	return response
}
