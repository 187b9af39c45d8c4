package employee

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
)

var (
	ErrNotFound          = apperror.NotFound("Employee not found")
	ErrFirstNameRequired = apperror.Validation("first_name is required")
)

type Employee struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	MiddleName string
	Position   string
	Phone      string
	Email      string
	HiredDate  *time.Time
	IsActive   bool
	CreatedAt  time.Time
}

// FullName renders "Last First Middle", skipping empty parts.
func (e *Employee) FullName() string {
	parts := make([]string, 0, 3)

	for _, p := range []string{e.LastName, e.FirstName, e.MiddleName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " ")
}
