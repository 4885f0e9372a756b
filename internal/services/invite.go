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
	ErrAlreadyMember   = errors.New("user is already a team member")
	ErrAlreadyPending  = errors.New("a pending invite or approval already exists for this user")
	ErrRequestNotFound = errors.New("pending request not found")
)

// InviteService drives the two-path invitation workflow. An owner (or an
// admin on a team without the approval gate) invites directly; an admin on a
// gated team has the invite routed to the owner as an approval request first.
// Pending state lives in pending_requests; the recipient's inbox gets a
// mirror notification that is removed together with the request.
type InviteService struct {
	db       *database.DB
	teams    *TeamService
	users    *UserService
	activity *ActivityService
}

func NewInviteService(db *database.DB, teams *TeamService, users *UserService, activity *ActivityService) *InviteService {
	return &InviteService{db: db, teams: teams, users: users, activity: activity}
}

func (s *InviteService) Invite(ctx context.Context, teamID, senderID uuid.UUID, inviteeEmail string) (*models.PendingRequest, error) {
	invitee, err := s.users.GetByEmail(ctx, inviteeEmail)
	if err != nil {
		return nil, err
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.teams.IsMember(ctx, teamID, invitee.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	senderRole, err := s.teams.GetMemberRole(ctx, teamID, senderID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	switch {
	case models.RequiresApproval(senderRole, team.IsInviteApprovalRequired):
		message := fmt.Sprintf("%s wants to invite %s (%s) to join the team %q.",
			sender.Name, invitee.Name, invitee.Email, team.Name)
		return s.createPending(ctx, models.PendingApproval, teamID, senderID, team.OwnerID, invitee.ID, message)

	case models.CanInviteDirectly(senderRole, team.IsInviteApprovalRequired):
		message := fmt.Sprintf("%s has invited you to join the team %q.", sender.Name, team.Name)
		return s.createPending(ctx, models.PendingInvite, teamID, senderID, invitee.ID, invitee.ID, message)

	default:
		return nil, ErrForbidden
	}
}

// createPending inserts the request and its inbox mirror in one transaction.
// The unique (team_id, invitee_id) constraint is the authoritative duplicate
// check: a concurrent invite for the same invitee loses the insert race and
// reports ErrAlreadyPending instead of creating a second pending record.
func (s *InviteService) createPending(ctx context.Context, kind string, teamID, senderID, recipientID, inviteeID uuid.UUID, message string) (*models.PendingRequest, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var req models.PendingRequest
	err = tx.QueryRow(ctx, `
		INSERT INTO pending_requests (team_id, kind, sender_id, recipient_id, invitee_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team_id, invitee_id) DO NOTHING
		RETURNING id, team_id, kind, sender_id, recipient_id, invitee_id, created_at
	`, teamID, kind, senderID, recipientID, inviteeID).Scan(
		&req.ID, &req.TeamID, &req.Kind, &req.SenderID, &req.RecipientID, &req.InviteeID, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyPending
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create pending request: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO notifications (user_id, sender_id, kind, message, reference_id)
		VALUES ($1, $2, $3, $4, $5)
	`, recipientID, senderID, kind, message, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &req, nil
}

// ResolveApproval consumes an approval request. Only the owner the request
// was addressed to may resolve it; anyone else sees it as missing. Approving
// turns the request into an owner-issued invite to the stored invitee and
// informs the requesting admin either way.
func (s *InviteService) ResolveApproval(ctx context.Context, approvalID, ownerID uuid.UUID, approve bool) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var req models.PendingRequest
	err = tx.QueryRow(ctx, `
		SELECT id, team_id, kind, sender_id, recipient_id, invitee_id, created_at
		FROM pending_requests WHERE id = $1 AND kind = $2
	`, approvalID, models.PendingApproval).Scan(
		&req.ID, &req.TeamID, &req.Kind, &req.SenderID, &req.RecipientID, &req.InviteeID, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	if req.RecipientID != ownerID {
		return ErrRequestNotFound
	}

	if err := deletePending(ctx, tx, req.ID); err != nil {
		return err
	}

	if !approve {
		_, err = tx.Exec(ctx, `
			INSERT INTO notifications (user_id, kind, message)
			VALUES ($1, $2, $3)
		`, req.SenderID, models.NotificationInfo, "Your member invitation request has been denied.")
		if err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return tx.Commit(ctx)
	}

	var teamName, ownerName string
	err = tx.QueryRow(ctx, `
		SELECT t.name, u.name FROM teams t, users u WHERE t.id = $1 AND u.id = $2
	`, req.TeamID, ownerID).Scan(&teamName, &ownerName)
	if err != nil {
		return err
	}

	// The new invite is owner-issued: the invitee sees the owner as sender,
	// not the admin who asked.
	var inviteID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO pending_requests (team_id, kind, sender_id, recipient_id, invitee_id)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, req.TeamID, models.PendingInvite, ownerID, req.InviteeID).Scan(&inviteID)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO notifications (user_id, sender_id, kind, message, reference_id)
		VALUES ($1, $2, $3, $4, $5)
	`, req.InviteeID, ownerID, models.NotificationInvite,
		fmt.Sprintf("%s has invited you to join the team %q.", ownerName, teamName), inviteID)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO notifications (user_id, kind, message)
		VALUES ($1, $2, $3)
	`, req.SenderID, models.NotificationInfo, "The owner has approved your member invitation request.")
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return tx.Commit(ctx)
}

// RespondToInvite consumes a pending invite. Accepting inserts the membership
// unless a concurrent path already added the user; either way the pending
// record and its inbox mirror are gone afterwards.
func (s *InviteService) RespondToInvite(ctx context.Context, inviteID, userID uuid.UUID, accept bool) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var req models.PendingRequest
	err = tx.QueryRow(ctx, `
		SELECT id, team_id, kind, sender_id, recipient_id, invitee_id, created_at
		FROM pending_requests WHERE id = $1 AND kind = $2
	`, inviteID, models.PendingInvite).Scan(
		&req.ID, &req.TeamID, &req.Kind, &req.SenderID, &req.RecipientID, &req.InviteeID, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	if req.RecipientID != userID {
		return ErrRequestNotFound
	}

	if err := deletePending(ctx, tx, req.ID); err != nil {
		return err
	}

	var responderName string
	if err := tx.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, userID).Scan(&responderName); err != nil {
		return err
	}

	if !accept {
		_, err = tx.Exec(ctx, `
			INSERT INTO notifications (user_id, kind, message)
			VALUES ($1, $2, $3)
		`, req.SenderID, models.NotificationInfo,
			fmt.Sprintf("%s has declined the invitation to join the team.", responderName))
		if err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return tx.Commit(ctx)
	}

	// Guard against a race where the user was added through another path
	// while the invite sat unanswered.
	var alreadyMember bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, req.TeamID, userID).Scan(&alreadyMember)
	if err != nil {
		return err
	}

	if !alreadyMember {
		_, err = tx.Exec(ctx, `
			INSERT INTO team_members (team_id, user_id, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (team_id, user_id) DO NOTHING
		`, req.TeamID, userID, models.RoleMember)
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO notifications (user_id, kind, message)
			VALUES ($1, $2, $3)
		`, req.SenderID, models.NotificationInfo,
			fmt.Sprintf("%s has accepted the invitation to join the team.", responderName))
		if err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if !alreadyMember {
		_ = s.activity.Log(ctx, userID, models.EventMemberJoined,
			fmt.Sprintf("%s joined the team", responderName), &req.TeamID, nil)
	}
	return nil
}

// GetPendingForUser lists invites addressed to a user, newest first.
func (s *InviteService) GetPendingForUser(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT pr.id, pr.team_id, pr.kind, pr.sender_id, pr.recipient_id, pr.invitee_id, pr.created_at,
		       t.id, t.name, t.description, t.owner_id, t.is_invite_approval_required, t.created_at, t.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM pending_requests pr
		JOIN teams t ON pr.team_id = t.id
		JOIN users u ON pr.sender_id = u.id
		WHERE pr.recipient_id = $1 AND pr.kind = $2
		ORDER BY pr.created_at DESC
	`, userID, models.PendingInvite)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.PendingRequest
	for rows.Next() {
		var req models.PendingRequest
		var team models.Team
		var sender models.User
		if err := rows.Scan(
			&req.ID, &req.TeamID, &req.Kind, &req.SenderID, &req.RecipientID, &req.InviteeID, &req.CreatedAt,
			&team.ID, &team.Name, &team.Description, &team.OwnerID, &team.IsInviteApprovalRequired, &team.CreatedAt, &team.UpdatedAt,
			&sender.ID, &sender.Email, &sender.Name, &sender.AvatarURL, &sender.CreatedAt, &sender.UpdatedAt,
		); err != nil {
			return nil, err
		}
		req.Team = &team
		req.Sender = &sender
		requests = append(requests, req)
	}
	return requests, nil
}

// GetPendingForTeam lists a team's outstanding invites and approval requests.
func (s *InviteService) GetPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]models.PendingRequest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT pr.id, pr.team_id, pr.kind, pr.sender_id, pr.recipient_id, pr.invitee_id, pr.created_at,
		       u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM pending_requests pr
		JOIN users u ON pr.invitee_id = u.id
		WHERE pr.team_id = $1
		ORDER BY pr.created_at DESC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.PendingRequest
	for rows.Next() {
		var req models.PendingRequest
		var invitee models.User
		if err := rows.Scan(
			&req.ID, &req.TeamID, &req.Kind, &req.SenderID, &req.RecipientID, &req.InviteeID, &req.CreatedAt,
			&invitee.ID, &invitee.Email, &invitee.Name, &invitee.AvatarURL, &invitee.CreatedAt, &invitee.UpdatedAt,
		); err != nil {
			return nil, err
		}
		req.Invitee = &invitee
		requests = append(requests, req)
	}
	return requests, nil
}

// CancelPending withdraws an outstanding request. Owners and admins may
// cancel for their team.
func (s *InviteService) CancelPending(ctx context.Context, teamID, actorID, requestID uuid.UUID) error {
	actorRole, err := s.teams.GetMemberRole(ctx, teamID, actorID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ErrForbidden
		}
		return err
	}
	if models.RoleRank(actorRole) < models.RoleRank(models.RoleAdmin) {
		return ErrForbidden
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
		DELETE FROM pending_requests WHERE id = $1 AND team_id = $2
	`, requestID, teamID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRequestNotFound
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM notifications WHERE reference_id = $1 AND kind IN ($2, $3)
	`, requestID, models.NotificationInvite, models.NotificationApproval)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// deletePending removes a request and its inbox mirror inside a transaction.
func deletePending(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM pending_requests WHERE id = $1`, requestID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		DELETE FROM notifications WHERE reference_id = $1 AND kind IN ($2, $3)
	`, requestID, models.NotificationInvite, models.NotificationApproval)
	return err
}
