package matching

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
)

var (
	ErrPatternRequired     = apperror.Validation("pattern is required")
	ErrDescriptionRequired = apperror.Validation("description is required")
	ErrUnknownMethod       = apperror.Validation("payment method not found")
)

// Rule maps every description containing Pattern (case-insensitive) to a
// preferred description and, optionally, a payment method.
type Rule struct {
	ID          uuid.UUID
	Pattern     string
	Description string
	MethodID    *uuid.UUID
	CreatedAt   time.Time
}

type Suggestion struct {
	Description string
	MethodID    *uuid.UUID
}
