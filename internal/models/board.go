package models

import (
	"time"

	"github.com/google/uuid"
)

// Board and Task exist here only as reminder targets: a task resolves to a
// team through its board, personal boards have no team. Board and task CRUD
// is handled elsewhere.

type Board struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
}

type Task struct {
	ID        uuid.UUID `json:"id"`
	BoardID   uuid.UUID `json:"board_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Reminder reference kinds.
const (
	ReferenceTask = "task"
	ReferenceTeam = "team"
)
