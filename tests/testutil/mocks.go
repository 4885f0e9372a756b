package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/teamhub/teamhub-api/internal/models"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, email, name string) (*models.User, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) Create(ctx context.Context, name, description string, ownerID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, name, description, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, []string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.Team), args.Get(1).([]string), args.Error(2)
}

func (m *MockTeamService) Update(ctx context.Context, teamID, actorID uuid.UUID, name, description string) (*models.Team, error) {
	args := m.Called(ctx, teamID, actorID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) UpdateSettings(ctx context.Context, teamID, actorID uuid.UUID, inviteApprovalRequired bool) error {
	args := m.Called(ctx, teamID, actorID, inviteApprovalRequired)
	return args.Error(0)
}

func (m *MockTeamService) Delete(ctx context.Context, teamID, actorID uuid.UUID) error {
	args := m.Called(ctx, teamID, actorID)
	return args.Error(0)
}

func (m *MockTeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamMember), args.Error(1)
}

func (m *MockTeamService) GetMemberRole(ctx context.Context, teamID, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, teamID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockTeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamService) RemoveMember(ctx context.Context, teamID, actorID, targetUserID uuid.UUID) error {
	args := m.Called(ctx, teamID, actorID, targetUserID)
	return args.Error(0)
}

func (m *MockTeamService) LeaveTeam(ctx context.Context, teamID, userID uuid.UUID) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *MockTeamService) ChangeMemberRole(ctx context.Context, teamID, actorID, targetUserID uuid.UUID, newRole string) error {
	args := m.Called(ctx, teamID, actorID, targetUserID, newRole)
	return args.Error(0)
}

// MockInviteService mocks the InviteService
type MockInviteService struct {
	mock.Mock
}

func (m *MockInviteService) Invite(ctx context.Context, teamID, senderID uuid.UUID, inviteeEmail string) (*models.PendingRequest, error) {
	args := m.Called(ctx, teamID, senderID, inviteeEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingRequest), args.Error(1)
}

func (m *MockInviteService) ResolveApproval(ctx context.Context, approvalID, ownerID uuid.UUID, approve bool) error {
	args := m.Called(ctx, approvalID, ownerID, approve)
	return args.Error(0)
}

func (m *MockInviteService) RespondToInvite(ctx context.Context, inviteID, userID uuid.UUID, accept bool) error {
	args := m.Called(ctx, inviteID, userID, accept)
	return args.Error(0)
}

func (m *MockInviteService) GetPendingForUser(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingRequest), args.Error(1)
}

func (m *MockInviteService) GetPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]models.PendingRequest, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingRequest), args.Error(1)
}

func (m *MockInviteService) CancelPending(ctx context.Context, teamID, actorID, requestID uuid.UUID) error {
	args := m.Called(ctx, teamID, actorID, requestID)
	return args.Error(0)
}

// MockNotificationService mocks the NotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockReminderService mocks the ReminderService
type MockReminderService struct {
	mock.Mock
}

func (m *MockReminderService) SendReminder(ctx context.Context, senderID, targetUserID, referenceID uuid.UUID, referenceKind, referenceName string) error {
	args := m.Called(ctx, senderID, targetUserID, referenceID, referenceKind, referenceName)
	return args.Error(0)
}

// MockActivityService mocks the ActivityService
type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) GetTeamActivities(ctx context.Context, teamID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	args := m.Called(ctx, teamID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivityLog), args.Error(1)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendTeamInvite(to, teamName, inviterName, inviteURL string) error {
	args := m.Called(to, teamName, inviterName, inviteURL)
	return args.Error(0)
}
