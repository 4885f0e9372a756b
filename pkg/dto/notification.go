package dto

import (
	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	Message     string     `json:"message"`
	SenderID    *uuid.UUID `json:"sender_id,omitempty"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	IsRead      bool       `json:"is_read"`
	CreatedAt   string     `json:"created_at"`
}

type SendReminderRequest struct {
	TargetUserID  uuid.UUID `json:"target_user_id"`
	ReferenceID   uuid.UUID `json:"reference_id"`
	ReferenceKind string    `json:"reference_kind"`
	ReferenceName string    `json:"reference_name"`
}
