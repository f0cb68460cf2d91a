package auth

import (
	"time"

	"github.com/lifeup-app/lifeup-api/internal/roles"
)

// User represents a user account row.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	RoleID       string
	IsPremium    bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPair is a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Result is the outcome of a successful login, registration, or refresh.
type Result struct {
	Tokens TokenPair
	User   User
	Role   roles.Role
}
