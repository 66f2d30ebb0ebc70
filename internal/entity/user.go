package entity

import (
	"time"

	"github.com/google/uuid"
)

// Dashboard account roles. Members see and work their own contact list;
// admins additionally manage accounts.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a dashboard account. Email doubles as the key of the contact list
// the upstream API serves for this user; Username is the owner handle the
// upstream stamps on contacts (Contact.OwnerUsername).
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the account may manage other accounts.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// KnownRole reports whether role is one of the dashboard's roles.
func KnownRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}
