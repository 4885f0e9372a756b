package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/teamhub/teamhub-api/internal/database"
	"github.com/teamhub/teamhub-api/internal/models"
)

// ActivityService is an append-only audit trail. Callers treat Log as
// fire-and-forget: a failed audit write must never abort the operation that
// produced it, so every call site discards the returned error.
type ActivityService struct {
	db *database.DB
}

func NewActivityService(db *database.DB) *ActivityService {
	return &ActivityService{db: db}
}

func (s *ActivityService) Log(ctx context.Context, actorID uuid.UUID, eventType, content string, teamID, boardID *uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO activity_log (user_id, event_type, content, team_id, board_id)
		VALUES ($1, $2, $3, $4, $5)
	`, actorID, eventType, content, teamID, boardID)
	return err
}

func (s *ActivityService) GetTeamActivities(ctx context.Context, teamID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Pool.Query(ctx, `
		SELECT a.id, a.user_id, a.event_type, a.content, a.team_id, a.board_id, a.created_at,
		       u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM activity_log a
		JOIN users u ON a.user_id = u.id
		WHERE a.team_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2
	`, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.ActivityLog
	for rows.Next() {
		var a models.ActivityLog
		var u models.User
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.EventType, &a.Content, &a.TeamID, &a.BoardID, &a.CreatedAt,
			&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.User = &u
		activities = append(activities, a)
	}
	return activities, nil
}
