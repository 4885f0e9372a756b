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

type NotificationHandler struct {
	notificationService NotificationServiceInterface
	reminderService     ReminderServiceInterface
}

func NewNotificationHandler(notificationService NotificationServiceInterface, reminderService ReminderServiceInterface) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		reminderService:     reminderService,
	}
}

func (h *NotificationHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	notifications, err := h.notificationService.List(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get notifications")
		return
	}

	response := make([]dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		response[i] = dto.NotificationResponse{
			ID:          n.ID,
			Kind:        n.Kind,
			Message:     n.Message,
			ReferenceID: n.ReferenceID,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	_ = c.JSON(200, response)
}

func (h *NotificationHandler) MarkRead(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid notification id")
		return
	}

	if err := h.notificationService.MarkRead(context.Background(), notificationID, userID); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			c.NotFound("notification not found")
			return
		}
		c.InternalServerError("failed to mark notification read")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "notification marked read"})
}

func (h *NotificationHandler) MarkAllRead(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.notificationService.MarkAllRead(context.Background(), userID); err != nil {
		c.InternalServerError("failed to mark notifications read")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "all notifications marked read"})
}

func (h *NotificationHandler) SendReminder(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.SendReminderRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.ReferenceKind == "" || req.ReferenceName == "" {
		c.BadRequest("reference_kind and reference_name are required")
		return
	}

	err := h.reminderService.SendReminder(context.Background(), userID, req.TargetUserID, req.ReferenceID, req.ReferenceKind, req.ReferenceName)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			c.Unauthorized("you are not allowed to remind this user")
		case errors.Is(err, services.ErrTaskNotFound):
			c.NotFound("task not found")
		case errors.Is(err, services.ErrSpamLimitReached):
			_ = c.JSON(429, map[string]string{"error": "reminder limit reached for today"})
		default:
			c.InternalServerError("failed to send reminder")
		}
		return
	}

	_ = c.JSON(201, map[string]string{"message": "reminder sent"})
}
