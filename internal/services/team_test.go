package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamhub/teamhub-api/internal/database"
	"github.com/teamhub/teamhub-api/internal/models"
)

func setupTeamService(t *testing.T) (*TeamService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	notifications := NewNotificationService(db)
	activity := NewActivityService(db)
	return NewTeamService(db, notifications, activity), mock
}

func teamRows(teamID, ownerID uuid.UUID, name string, approvalRequired bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "name", "description", "owner_id", "is_invite_approval_required", "created_at", "updated_at",
	}).AddRow(teamID, name, "", ownerID, approvalRequired, now, now)
}

func memberRows(teamID, userID uuid.UUID, role string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "team_id", "user_id", "role", "joined_at"}).
		AddRow(uuid.New(), teamID, userID, role, time.Now())
}

func TestTeamService_Create(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	teamID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO teams`).
		WithArgs("Test Team", "A team", ownerID).
		WillReturnRows(teamRows(teamID, ownerID, "Test Team", false))
	mock.ExpectExec(`INSERT INTO team_members`).
		WithArgs(teamID, ownerID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO activity_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	team, err := svc.Create(ctx, "Test Team", "A team", ownerID)

	require.NoError(t, err)
	assert.Equal(t, teamID, team.ID)
	assert.Equal(t, ownerID, team.OwnerID)
	assert.Equal(t, models.RoleOwner, "owner")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Create_TransactionRollback(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	teamID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO teams`).
		WithArgs("Test Team", "", ownerID).
		WillReturnRows(teamRows(teamID, ownerID, "Test Team", false))
	mock.ExpectExec(`INSERT INTO team_members`).
		WithArgs(teamID, ownerID, models.RoleOwner).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.Create(ctx, "Test Team", "", ownerID)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM teams WHERE id`).
		WithArgs(teamID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(context.Background(), teamID)

	assert.ErrorIs(t, err, ErrTeamNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_RemoveMember(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	teamID := uuid.New()
	ownerID := uuid.New()
	targetID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE team_id`).
		WithArgs(teamID, ownerID).
		WillReturnRows(memberRows(teamID, ownerID, models.RoleOwner))
	mock.ExpectQuery(`SELECT u.name, u.email`).
		WithArgs(teamID, targetID).
		WillReturnRows(pgxmock.NewRows([]string{"name", "email"}).AddRow("Target", "target@example.com"))
	mock.ExpectExec(`DELETE FROM team_members`).
		WithArgs(teamID, targetID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO activity_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := svc.RemoveMember(ctx, teamID, ownerID, targetID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_RemoveMember_NotOwner(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()
	adminID := uuid.New()
	targetID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE team_id`).
		WithArgs(teamID, adminID).
		WillReturnRows(memberRows(teamID, adminID, models.RoleAdmin))

	err := svc.RemoveMember(context.Background(), teamID, adminID, targetID)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_RemoveMember_Self(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE team_id`).
		WithArgs(teamID, ownerID).
		WillReturnRows(memberRows(teamID, ownerID, models.RoleOwner))

	err := svc.RemoveMember(context.Background(), teamID, ownerID, ownerID)

	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_RemoveMember_TargetBecameOwner(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()
	ownerID := uuid.New()
	targetID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE team_id`).
		WithArgs(teamID, ownerID).
		WillReturnRows(memberRows(teamID, ownerID, models.RoleOwner))
	mock.ExpectQuery(`SELECT u.name, u.email`).
		WithArgs(teamID, targetID).
		WillReturnRows(pgxmock.NewRows([]string{"name", "email"}).AddRow("Target", "target@example.com"))
	// Concurrent transfer promoted the target between lookup and delete.
	mock.ExpectExec(`DELETE FROM team_members`).
		WithArgs(teamID, targetID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.RemoveMember(context.Background(), teamID, ownerID, targetID)

	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_LeaveTeam(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()
	ownerID := uuid.New()
	memberID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM teams WHERE id`).
		WithArgs(teamID).
		WillReturnRows(teamRows(teamID, ownerID, "Test Team", false))
	mock.ExpectExec(`DELETE FROM team_members`).
		WithArgs(teamID, memberID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO activity_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := svc.LeaveTeam(context.Background(), teamID, memberID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_LeaveTeam_OwnerBlocked(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM teams WHERE id`).
		WithArgs(teamID).
		WillReturnRows(teamRows(teamID, ownerID, "Test Team", false))

	err := svc.LeaveTeam(context.Background(), teamID, ownerID)

	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_ChangeMemberRole_UnknownRole(t *testing.T) {
	svc, _ := setupTeamService(t)

	err := svc.ChangeMemberRole(context.Background(), uuid.New(), uuid.New(), uuid.New(), "superuser")

	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestTeamService_ChangeMemberRole_ActorNotOwner(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()
	ownerID := uuid.New()
	adminID := uuid.New()
	targetID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM teams WHERE id`).
		WithArgs(teamID).
		WillReturnRows(teamRows(teamID, ownerID, "Test Team", false))
	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE team_id`).
		WithArgs(teamID, adminID).
		WillReturnRows(memberRows(teamID, adminID, models.RoleAdmin))

	err := svc.ChangeMemberRole(context.Background(), teamID, adminID, targetID, models.RoleAdmin)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_ChangeMemberRole_Promote(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()
	ownerID := uuid.New()
	targetID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM teams WHERE id`).
		WithArgs(teamID).
		WillReturnRows(teamRows(teamID, ownerID, "Test Team", false))
	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE team_id`).
		WithArgs(teamID, ownerID).
		WillReturnRows(memberRows(teamID, ownerID, models.RoleOwner))
	mock.ExpectQuery(`SELECT u.name`).
		WithArgs(teamID, targetID).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Target"))
	mock.ExpectExec(`UPDATE team_members SET role`).
		WithArgs(models.RoleAdmin, teamID, targetID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(notificationRows(targetID, models.NotificationInfo))
	mock.ExpectExec(`INSERT INTO activity_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := svc.ChangeMemberRole(context.Background(), teamID, ownerID, targetID, models.RoleAdmin)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_ChangeMemberRole_TransferOwnership(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()
	ownerID := uuid.New()
	targetID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM teams WHERE id`).
		WithArgs(teamID).
		WillReturnRows(teamRows(teamID, ownerID, "Test Team", false))
	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE team_id`).
		WithArgs(teamID, ownerID).
		WillReturnRows(memberRows(teamID, ownerID, models.RoleOwner))
	mock.ExpectQuery(`SELECT u.name`).
		WithArgs(teamID, targetID).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Target"))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE team_members SET role`).
		WithArgs(models.RoleAdmin, teamID, ownerID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE team_members SET role`).
		WithArgs(models.RoleOwner, teamID, targetID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE teams SET owner_id`).
		WithArgs(targetID, teamID, ownerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(notificationRows(targetID, models.NotificationInfo))
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(notificationRows(ownerID, models.NotificationInfo))
	mock.ExpectExec(`INSERT INTO activity_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := svc.ChangeMemberRole(context.Background(), teamID, ownerID, targetID, models.RoleOwner)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_TransferOwnership_RollbackMidway(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()
	ownerID := uuid.New()
	targetID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM teams WHERE id`).
		WithArgs(teamID).
		WillReturnRows(teamRows(teamID, ownerID, "Test Team", false))
	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE team_id`).
		WithArgs(teamID, ownerID).
		WillReturnRows(memberRows(teamID, ownerID, models.RoleOwner))
	mock.ExpectQuery(`SELECT u.name`).
		WithArgs(teamID, targetID).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Target"))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE team_members SET role`).
		WithArgs(models.RoleAdmin, teamID, ownerID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// Promotion fails; the demotion above must not survive.
	mock.ExpectExec(`UPDATE team_members SET role`).
		WithArgs(models.RoleOwner, teamID, targetID).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := svc.ChangeMemberRole(context.Background(), teamID, ownerID, targetID, models.RoleOwner)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_TransferOwnership_ActorLostOwnership(t *testing.T) {
	svc, mock := setupTeamService(t)
	teamID := uuid.New()
	ownerID := uuid.New()
	targetID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM teams WHERE id`).
		WithArgs(teamID).
		WillReturnRows(teamRows(teamID, ownerID, "Test Team", false))
	mock.ExpectQuery(`SELECT .+ FROM team_members WHERE team_id`).
		WithArgs(teamID, ownerID).
		WillReturnRows(memberRows(teamID, ownerID, models.RoleOwner))
	mock.ExpectQuery(`SELECT u.name`).
		WithArgs(teamID, targetID).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Target"))

	mock.ExpectBegin()
	// A concurrent transfer already demoted the actor.
	mock.ExpectExec(`UPDATE team_members SET role`).
		WithArgs(models.RoleAdmin, teamID, ownerID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := svc.ChangeMemberRole(context.Background(), teamID, ownerID, targetID, models.RoleOwner)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}
