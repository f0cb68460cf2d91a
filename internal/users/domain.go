package users

import "time"

// User represents a user account for management.
type User struct {
	ID        string
	Email     string
	Name      string
	RoleID    string
	IsPremium bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
