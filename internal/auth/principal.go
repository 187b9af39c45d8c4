package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
)

// ErrStaffRequired is returned when a non-staff principal attempts a write
// that is reserved for staff.
var ErrStaffRequired = apperror.PermissionDenied("Permission denied. Only staff users can perform this action.")

// ErrNotAuthenticated is returned when no session is attached to the call.
var ErrNotAuthenticated = apperror.Unauthenticated("Authentication credentials were not provided.")

// Principal is the authorization context passed into every service operation.
// The zero value is an anonymous caller.
type Principal struct {
	UserID   uuid.UUID
	Username string
	IsStaff  bool
	IsActive bool
}

func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil && p.IsActive
}

func (p Principal) RequireAuthenticated() error {
	if !p.Authenticated() {
		return ErrNotAuthenticated
	}

	return nil
}

func (p Principal) RequireStaff() error {
	if err := p.RequireAuthenticated(); err != nil {
		return err
	}

	if !p.IsStaff {
		return ErrStaffRequired
	}

	return nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, or an anonymous one.
func PrincipalFrom(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}
