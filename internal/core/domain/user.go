package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of authorization roles an account can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole accepts a role name in any case, with or without the ROLE_ prefix.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_"))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidOperation, s)
	}
	return r, nil
}

// User is the durable account record. Username and email are unique.
type User struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Role               Role      `json:"role"`
	EmailNotifications bool      `json:"email_notifications"`
	TokenVersion       int       `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UserUpdate carries the optional profile fields a user may change.
// Nil fields are left untouched.
type UserUpdate struct {
	Username *string
	Email    *string
}

// UserChanges is a field-level update of a stored account. Nil fields keep
// their stored value. RequireRole and RequireTokenVersion make the update
// conditional: when the stored account no longer matches them nothing is
// written and the store returns ErrConcurrentUpdate.
type UserChanges struct {
	Username           *string
	Email              *string
	PasswordHash       *string
	Role               *Role
	EmailNotifications *bool
	BumpTokenVersion   bool
	UpdatedAt          time.Time

	RequireRole         *Role
	RequireTokenVersion *int
}

// Conditional reports whether the update carries a precondition.
func (c UserChanges) Conditional() bool {
	return c.RequireRole != nil || c.RequireTokenVersion != nil
}

// Apply returns a copy of u with the changes applied. Preconditions are
// not checked.
func (c UserChanges) Apply(u User) User {
	if c.Username != nil {
		u.Username = *c.Username
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	if c.Role != nil {
		u.Role = *c.Role
	}
	if c.EmailNotifications != nil {
		u.EmailNotifications = *c.EmailNotifications
	}
	if c.BumpTokenVersion {
		u.TokenVersion++
	}
	if !c.UpdatedAt.IsZero() {
		u.UpdatedAt = c.UpdatedAt
	}
	return u
}

// Matches reports whether u satisfies the update's preconditions.
func (c UserChanges) Matches(u User) bool {
	if c.RequireRole != nil && u.Role != *c.RequireRole {
		return false
	}
	if c.RequireTokenVersion != nil && u.TokenVersion != *c.RequireTokenVersion {
		return false
	}
	return true
}
