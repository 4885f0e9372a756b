package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/teamhub/teamhub-api/internal/models"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Create(ctx context.Context, email, name string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, name, description string, ownerID uuid.UUID) (*models.Team, error)
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, []string, error)
	Update(ctx context.Context, teamID, actorID uuid.UUID, name, description string) (*models.Team, error)
	UpdateSettings(ctx context.Context, teamID, actorID uuid.UUID, inviteApprovalRequired bool) error
	Delete(ctx context.Context, teamID, actorID uuid.UUID) error
	GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	GetMemberRole(ctx context.Context, teamID, userID uuid.UUID) (string, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	RemoveMember(ctx context.Context, teamID, actorID, targetUserID uuid.UUID) error
	LeaveTeam(ctx context.Context, teamID, userID uuid.UUID) error
	ChangeMemberRole(ctx context.Context, teamID, actorID, targetUserID uuid.UUID, newRole string) error
}

// InviteServiceInterface defines the methods used by handlers from InviteService
type InviteServiceInterface interface {
	Invite(ctx context.Context, teamID, senderID uuid.UUID, inviteeEmail string) (*models.PendingRequest, error)
	ResolveApproval(ctx context.Context, approvalID, ownerID uuid.UUID, approve bool) error
	RespondToInvite(ctx context.Context, inviteID, userID uuid.UUID, accept bool) error
	GetPendingForUser(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error)
	GetPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]models.PendingRequest, error)
	CancelPending(ctx context.Context, teamID, actorID, requestID uuid.UUID) error
}

// NotificationServiceInterface defines the methods used by handlers from NotificationService
type NotificationServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// ReminderServiceInterface defines the methods used by handlers from ReminderService
type ReminderServiceInterface interface {
	SendReminder(ctx context.Context, senderID, targetUserID, referenceID uuid.UUID, referenceKind, referenceName string) error
}

// ActivityServiceInterface defines the methods used by handlers from ActivityService
type ActivityServiceInterface interface {
	GetTeamActivities(ctx context.Context, teamID uuid.UUID, limit int) ([]models.ActivityLog, error)
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	SendTeamInvite(to, teamName, inviterName, inviteURL string) error
}
