package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teamhub/teamhub-api/internal/database"
	"github.com/teamhub/teamhub-api/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService owns the inbox: plain informational messages, reminder
// nudges, and read-only mirrors of pending workflow requests. Workflow state
// itself lives in pending_requests and is managed by InviteService.
type NotificationService struct {
	db *database.DB
}

func NewNotificationService(db *database.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) Create(ctx context.Context, kind string, userID uuid.UUID, senderID, referenceID *uuid.UUID, message string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, sender_id, kind, message, reference_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, sender_id, kind, message, reference_id, is_read, created_at
	`, userID, senderID, kind, message, referenceID).Scan(
		&n.ID, &n.UserID, &n.SenderID, &n.Kind, &n.Message, &n.ReferenceID, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

func (s *NotificationService) CreateInfo(ctx context.Context, userID uuid.UUID, message string) error {
	_, err := s.Create(ctx, models.NotificationInfo, userID, nil, nil, message)
	return err
}

func (s *NotificationService) CreateReminder(ctx context.Context, userID, senderID, referenceID uuid.UUID, message string) error {
	_, err := s.Create(ctx, models.NotificationReminder, userID, &senderID, &referenceID, message)
	return err
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, user_id, sender_id, kind, message, reference_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 10
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.SenderID, &n.Kind, &n.Message, &n.ReferenceID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	return err
}

// CountRemindersSince counts reminder notifications a sender has already
// directed at a recipient about one reference. The daily reminder quota is
// derived from this count, not stored anywhere.
func (s *NotificationService) CountRemindersSince(ctx context.Context, senderID, recipientID, referenceID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE kind = $1 AND sender_id = $2 AND user_id = $3 AND reference_id = $4 AND created_at >= $5
	`, models.NotificationReminder, senderID, recipientID, referenceID, since).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
