package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teamhub/teamhub-api/internal/database"
	"github.com/teamhub/teamhub-api/internal/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrMemberNotFound   = errors.New("member not found in the team")
	ErrForbidden        = errors.New("insufficient role for this operation")
	ErrInvalidOperation = errors.New("operation not allowed")
)

type TeamService struct {
	db            *database.DB
	notifications *NotificationService
	activity      *ActivityService
}

func NewTeamService(db *database.DB, notifications *NotificationService, activity *ActivityService) *TeamService {
	return &TeamService{db: db, notifications: notifications, activity: activity}
}

func (s *TeamService) Create(ctx context.Context, name, description string, ownerID uuid.UUID) (*models.Team, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var team models.Team
	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, owner_id, is_invite_approval_required, created_at, updated_at
	`, name, description, ownerID).Scan(
		&team.ID, &team.Name, &team.Description, &team.OwnerID,
		&team.IsInviteApprovalRequired, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
	`, team.ID, ownerID, models.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to add owner as member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	_ = s.activity.Log(ctx, ownerID, models.EventTeamCreated, fmt.Sprintf("Created team %q", team.Name), &team.ID, nil)

	return &team, nil
}

func (s *TeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, description, owner_id, is_invite_approval_required, created_at, updated_at
		FROM teams WHERE id = $1
	`, teamID).Scan(
		&team.ID, &team.Name, &team.Description, &team.OwnerID,
		&team.IsInviteApprovalRequired, &team.CreatedAt, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, []string, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT t.id, t.name, t.description, t.owner_id, t.is_invite_approval_required, t.created_at, t.updated_at, tm.role
		FROM teams t
		JOIN team_members tm ON t.id = tm.team_id
		WHERE tm.user_id = $1
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var teams []models.Team
	var roles []string
	for rows.Next() {
		var team models.Team
		var role string
		if err := rows.Scan(
			&team.ID, &team.Name, &team.Description, &team.OwnerID,
			&team.IsInviteApprovalRequired, &team.CreatedAt, &team.UpdatedAt, &role,
		); err != nil {
			return nil, nil, err
		}
		teams = append(teams, team)
		roles = append(roles, role)
	}
	return teams, roles, nil
}

func (s *TeamService) Update(ctx context.Context, teamID, actorID uuid.UUID, name, description string) (*models.Team, error) {
	if err := s.requireOwner(ctx, teamID, actorID); err != nil {
		return nil, err
	}

	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE teams SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, description, owner_id, is_invite_approval_required, created_at, updated_at
	`, name, description, teamID).Scan(
		&team.ID, &team.Name, &team.Description, &team.OwnerID,
		&team.IsInviteApprovalRequired, &team.CreatedAt, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) UpdateSettings(ctx context.Context, teamID, actorID uuid.UUID, inviteApprovalRequired bool) error {
	if err := s.requireOwner(ctx, teamID, actorID); err != nil {
		return err
	}

	_, err := s.db.Pool.Exec(ctx, `
		UPDATE teams SET is_invite_approval_required = $1, updated_at = NOW() WHERE id = $2
	`, inviteApprovalRequired, teamID)
	return err
}

func (s *TeamService) Delete(ctx context.Context, teamID, actorID uuid.UUID) error {
	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OwnerID != actorID {
		return ErrForbidden
	}

	// Members, pending requests, boards and team activity cascade with the team.
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID); err != nil {
		return err
	}

	_ = s.activity.Log(ctx, actorID, models.EventTeamDeleted, fmt.Sprintf("Deleted team %q", team.Name), nil, nil)
	return nil
}

func (s *TeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT tm.id, tm.team_id, tm.user_id, tm.role, tm.joined_at,
		       u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
		ORDER BY tm.joined_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.TeamID, &member.UserID, &member.Role, &member.JoinedAt,
			&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, nil
}

func (s *TeamService) GetMember(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, team_id, user_id, role, joined_at
		FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&member.ID, &member.TeamID, &member.UserID, &member.Role, &member.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *TeamService) GetMemberRole(ctx context.Context, teamID, userID uuid.UUID) (string, error) {
	member, err := s.GetMember(ctx, teamID, userID)
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

func (s *TeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	return exists, err
}

func (s *TeamService) IsOwner(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var ownerID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `SELECT owner_id FROM teams WHERE id = $1`, teamID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrTeamNotFound
	}
	if err != nil {
		return false, err
	}
	return ownerID == userID, nil
}

// AddMember inserts a membership row, ignoring duplicates. Used by the invite
// acceptance path and by fixtures; authorization happens at the call sites.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID uuid.UUID, role string) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, teamID, userID, role)
	return err
}

func (s *TeamService) RemoveMember(ctx context.Context, teamID, actorID, targetUserID uuid.UUID) error {
	actorRole, err := s.GetMemberRole(ctx, teamID, actorID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ErrForbidden
		}
		return err
	}
	if !models.CanManage(actorRole, "") {
		return ErrForbidden
	}
	if targetUserID == actorID {
		return ErrInvalidOperation
	}

	var targetName, targetEmail string
	err = s.db.Pool.QueryRow(ctx, `
		SELECT u.name, u.email
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1 AND tm.user_id = $2
	`, teamID, targetUserID).Scan(&targetName, &targetEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMemberNotFound
	}
	if err != nil {
		return err
	}

	// Role re-checked in the delete itself: a concurrent ownership transfer
	// could have promoted the target since the lookup above.
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2 AND role != $3
	`, teamID, targetUserID, models.RoleOwner)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInvalidOperation
	}

	_ = s.activity.Log(ctx, actorID, models.EventMemberRemoved,
		fmt.Sprintf("Removed %s (%s) from the team", targetName, targetEmail), &teamID, nil)
	return nil
}

func (s *TeamService) LeaveTeam(ctx context.Context, teamID, userID uuid.UUID) error {
	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OwnerID == userID {
		// A team without an owner is an invariant violation: the owner must
		// transfer ownership or delete the team instead.
		return ErrInvalidOperation
	}

	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2 AND role != $3
	`, teamID, userID, models.RoleOwner)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	_ = s.activity.Log(ctx, userID, models.EventMemberLeft, "Left the team", &teamID, nil)
	return nil
}

// ChangeMemberRole updates a member's role. Promoting to owner is an
// ownership transfer: the actor is demoted to admin, the target promoted, and
// teams.owner_id reassigned, all in one transaction so the one-owner
// invariant can never be observed broken.
func (s *TeamService) ChangeMemberRole(ctx context.Context, teamID, actorID, targetUserID uuid.UUID, newRole string) error {
	if models.RoleRank(newRole) == 0 {
		return ErrInvalidOperation
	}

	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	actorRole, err := s.GetMemberRole(ctx, teamID, actorID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ErrForbidden
		}
		return err
	}
	if !models.CanManage(actorRole, "") {
		return ErrForbidden
	}
	if targetUserID == actorID {
		return ErrInvalidOperation
	}

	var targetName string
	err = s.db.Pool.QueryRow(ctx, `
		SELECT u.name
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1 AND tm.user_id = $2
	`, teamID, targetUserID).Scan(&targetName)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMemberNotFound
	}
	if err != nil {
		return err
	}

	if newRole == models.RoleOwner {
		if err := s.transferOwnership(ctx, teamID, actorID, targetUserID); err != nil {
			return err
		}

		_ = s.notifications.CreateInfo(ctx, targetUserID,
			fmt.Sprintf("You have been promoted to owner of the team %q.", team.Name))
		_ = s.notifications.CreateInfo(ctx, actorID,
			fmt.Sprintf("You have transferred ownership of the team %q to %s.", team.Name, targetName))
		_ = s.activity.Log(ctx, actorID, models.EventRoleUpdated,
			fmt.Sprintf("Transferred ownership to %s", targetName), &teamID, nil)
		return nil
	}

	result, err := s.db.Pool.Exec(ctx, `
		UPDATE team_members SET role = $1 WHERE team_id = $2 AND user_id = $3 AND role != $4
	`, newRole, teamID, targetUserID, models.RoleOwner)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	_ = s.notifications.CreateInfo(ctx, targetUserID,
		fmt.Sprintf("Your role in team %q has been changed to %s.", team.Name, newRole))
	_ = s.activity.Log(ctx, actorID, models.EventRoleUpdated,
		fmt.Sprintf("Changed %s's role to %s", targetName, newRole), &teamID, nil)
	return nil
}

func (s *TeamService) transferOwnership(ctx context.Context, teamID, actorID, targetUserID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Each write re-validates the state it read: if the actor lost ownership
	// or the target left between the lookups and here, nothing is applied.
	result, err := tx.Exec(ctx, `
		UPDATE team_members SET role = $1 WHERE team_id = $2 AND user_id = $3 AND role = $4
	`, models.RoleAdmin, teamID, actorID, models.RoleOwner)
	if err != nil {
		return fmt.Errorf("failed to demote current owner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrForbidden
	}

	result, err = tx.Exec(ctx, `
		UPDATE team_members SET role = $1 WHERE team_id = $2 AND user_id = $3
	`, models.RoleOwner, teamID, targetUserID)
	if err != nil {
		return fmt.Errorf("failed to promote new owner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	result, err = tx.Exec(ctx, `
		UPDATE teams SET owner_id = $1, updated_at = NOW() WHERE id = $2 AND owner_id = $3
	`, targetUserID, teamID, actorID)
	if err != nil {
		return fmt.Errorf("failed to update team owner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrForbidden
	}

	return tx.Commit(ctx)
}

func (s *TeamService) requireOwner(ctx context.Context, teamID, actorID uuid.UUID) error {
	isOwner, err := s.IsOwner(ctx, teamID, actorID)
	if err != nil {
		return err
	}
	if !isOwner {
		return ErrForbidden
	}
	return nil
}
