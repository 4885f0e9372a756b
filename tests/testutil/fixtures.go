package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/teamhub/teamhub-api/internal/database"
	"github.com/teamhub/teamhub-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Name:  fmt.Sprintf("Test User %d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, avatar_url, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// CreateTeam creates a team and its owner membership row
func (f *Fixtures) CreateTeam(t *testing.T, ownerID uuid.UUID, opts ...TeamOption) *models.Team {
	t.Helper()
	f.counter++

	team := &models.Team{
		Name:    fmt.Sprintf("Test Team %d", f.counter),
		OwnerID: ownerID,
	}

	for _, opt := range opts {
		opt(team)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO teams (name, description, owner_id, is_invite_approval_required)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, owner_id, is_invite_approval_required, created_at, updated_at
	`, team.Name, team.Description, team.OwnerID, team.IsInviteApprovalRequired).Scan(
		&team.ID, &team.Name, &team.Description, &team.OwnerID,
		&team.IsInviteApprovalRequired, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	f.AddMember(t, team.ID, ownerID, models.RoleOwner)

	return team
}

// TeamOption configures a test team
type TeamOption func(*models.Team)

// WithApprovalRequired enables the invite approval gate
func WithApprovalRequired() TeamOption {
	return func(tm *models.Team) {
		tm.IsInviteApprovalRequired = true
	}
}

// WithTeamName sets the team's name
func WithTeamName(name string) TeamOption {
	return func(tm *models.Team) {
		tm.Name = name
	}
}

// AddMember inserts a membership row with the given role
func (f *Fixtures) AddMember(t *testing.T, teamID, userID uuid.UUID, role string) {
	t.Helper()

	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, teamID, userID, role)
	if err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
}

// CreateBoard creates a board, optionally attached to a team
func (f *Fixtures) CreateBoard(t *testing.T, ownerID uuid.UUID, teamID *uuid.UUID) *models.Board {
	t.Helper()
	f.counter++

	board := &models.Board{
		Name:    fmt.Sprintf("Board %d", f.counter),
		TeamID:  teamID,
		OwnerID: ownerID,
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO boards (name, team_id, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, team_id, owner_id, created_at
	`, board.Name, board.TeamID, board.OwnerID).Scan(
		&board.ID, &board.Name, &board.TeamID, &board.OwnerID, &board.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create board: %v", err)
	}

	return board
}

// CreateTask creates a task on a board
func (f *Fixtures) CreateTask(t *testing.T, boardID uuid.UUID) *models.Task {
	t.Helper()
	f.counter++

	task := &models.Task{
		BoardID: boardID,
		Title:   fmt.Sprintf("Task %d", f.counter),
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO tasks (board_id, title)
		VALUES ($1, $2)
		RETURNING id, board_id, title, created_at
	`, task.BoardID, task.Title).Scan(
		&task.ID, &task.BoardID, &task.Title, &task.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}
