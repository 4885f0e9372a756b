package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teamhub/teamhub-api/internal/database"
	"github.com/teamhub/teamhub-api/internal/models"
)

var (
	ErrUnauthorized     = errors.New("sender may not send reminders in this scope")
	ErrSpamLimitReached = errors.New("daily reminder limit reached for this recipient")
	ErrTaskNotFound     = errors.New("task not found")
)

// Daily cap on reminders per (sender, recipient, reference).
const reminderDailyLimit = 2

// ReminderService sends rate-limited nudge notifications between team
// participants. A task reference resolves to a team through its board; a
// team reference is the team itself. Only owners and admins of the resolved
// team may send, and personal (team-less) references are not eligible.
type ReminderService struct {
	db            *database.DB
	teams         *TeamService
	notifications *NotificationService
}

func NewReminderService(db *database.DB, teams *TeamService, notifications *NotificationService) *ReminderService {
	return &ReminderService{db: db, teams: teams, notifications: notifications}
}

func (s *ReminderService) SendReminder(ctx context.Context, senderID, targetUserID, referenceID uuid.UUID, referenceKind, referenceName string) error {
	teamID, err := s.resolveTeamScope(ctx, referenceID, referenceKind)
	if err != nil {
		return err
	}
	if teamID == nil {
		return ErrUnauthorized
	}

	senderRole, err := s.teams.GetMemberRole(ctx, *teamID, senderID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	if models.RoleRank(senderRole) < models.RoleRank(models.RoleAdmin) {
		return ErrUnauthorized
	}

	// Best-effort daily cap: the count and the insert are not serialized, so
	// two concurrent sends can both pass the check. Accepted limitation.
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	count, err := s.notifications.CountRemindersSince(ctx, senderID, targetUserID, referenceID, startOfDay)
	if err != nil {
		return err
	}
	if count >= reminderDailyLimit {
		return ErrSpamLimitReached
	}

	var message string
	if referenceKind == models.ReferenceTask {
		message = fmt.Sprintf("reminded you about the task %q", referenceName)
	} else {
		message = fmt.Sprintf("reminded you about work in the team %q", referenceName)
	}

	return s.notifications.CreateReminder(ctx, targetUserID, senderID, referenceID, message)
}

// resolveTeamScope maps a reminder reference to the team whose roles gate it.
// Returns nil for personal boards, which have no team.
func (s *ReminderService) resolveTeamScope(ctx context.Context, referenceID uuid.UUID, referenceKind string) (*uuid.UUID, error) {
	if referenceKind == models.ReferenceTeam {
		return &referenceID, nil
	}

	var teamID *uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT b.team_id
		FROM tasks t
		JOIN boards b ON t.board_id = b.id
		WHERE t.id = $1
	`, referenceID).Scan(&teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return teamID, nil
}
