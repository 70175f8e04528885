package domain

import "time"

// AuditType names a security-relevant account event.
type AuditType string

const (
	AuditUserRegistered  AuditType = "user.registered"
	AuditUserLoggedIn    AuditType = "user.logged_in"
	AuditLoginFailed     AuditType = "user.login_failed"
	AuditUserLoggedOut   AuditType = "user.logged_out"
	AuditRoleChanged     AuditType = "user.role_changed"
	AuditPasswordChanged AuditType = "user.password_changed"
	AuditUserDeleted     AuditType = "user.deleted"
)

// AuditEvent is published after an account event has been committed.
type AuditEvent struct {
	Type     AuditType `json:"type"`
	UserID   string    `json:"user_id,omitempty"`
	Username string    `json:"username"`
	ActorID  string    `json:"actor_id,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}
