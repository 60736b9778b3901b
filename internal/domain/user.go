package domain

import (
	"context"
	"time"
)

// Account roles
const (
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"
	RoleSystem    = "system"
)

type User struct {
	ID        string    `json:"id"` // Supabase UUID
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanPublishNotifications reports whether the role may create notifications
// for other accounts.
func (u *User) CanPublishNotifications() bool {
	return u.Role == RoleAdmin || u.Role == RoleSystem
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// Identity is the signed-in account resolved from a bearer token.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

type AuthUsecase interface {
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	// Authenticate verifies a raw bearer token and resolves the account behind it.
	Authenticate(ctx context.Context, token string) (*Identity, error)
}
