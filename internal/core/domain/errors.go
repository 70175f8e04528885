package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUserExists            = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrUnauthenticated       = errors.New("authentication required")
	ErrForbidden             = errors.New("access forbidden")
	ErrTaskNotFound          = errors.New("task not found")
	ErrInvalidOperation      = errors.New("invalid operation")
	ErrPasswordMismatch      = errors.New("passwords do not match")
	ErrConcurrentUpdate      = errors.New("account was modified concurrently, retry the request")
)

// UserAlreadyExistsError reports which unique field collided on registration
// or profile update.
type UserAlreadyExistsError struct {
	Field string
}

func (e *UserAlreadyExistsError) Error() string {
	switch e.Field {
	case "username":
		return "Username already exists"
	case "email":
		return "Email already exists"
	default:
		return fmt.Sprintf("%s already exists", e.Field)
	}
}

// Is lets errors.Is(err, ErrUserExists) match any field conflict.
func (e *UserAlreadyExistsError) Is(target error) bool {
	return target == ErrUserExists
}

// UserConflict returns the conflict error for field.
func UserConflict(field string) error {
	return &UserAlreadyExistsError{Field: field}
}

// IsTokenError reports whether err is one of the token verification failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenInvalidSignature) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenRevoked)
}
