package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
	"github.com/MrJamesThe3rd/backoffice/internal/auth"
)

var (
	ErrNotFound           = apperror.NotFound("User not found")
	ErrUsernameTaken      = apperror.Validation("Username already exists")
	ErrUsernameRequired   = apperror.Validation("username is required")
	ErrPasswordRequired   = apperror.Validation("password is required")
	ErrInvalidCredentials = apperror.Unauthenticated("Invalid username or password")
)

// User is a login account. PasswordHash is a bcrypt hash and never leaves
// the service layer.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	IsStaff      bool
	IsActive     bool
	DateJoined   time.Time
	LastLogin    *time.Time
}

func (u *User) Principal() auth.Principal {
	return auth.Principal{
		UserID:   u.ID,
		Username: u.Username,
		IsStaff:  u.IsStaff,
		IsActive: u.IsActive,
	}
}
