package transaction

import "github.com/MrJamesThe3rd/backoffice/internal/apperror"

var (
	ErrNotFound        = apperror.NotFound("Transaction not found")
	ErrMethodNotFound  = apperror.NotFound("Payment method not found")
	ErrUnknownMethod   = apperror.Validation("payment method not found")
	ErrMethodInUse     = apperror.Conflict("Payment method is used by existing transactions")
	ErrInvalidType     = apperror.Validation("type must be one of: income, expense")
	ErrInvalidCurrency = apperror.Validation("currency must be one of: uzs, usd, afn")
	ErrNegativeAmount  = apperror.Validation("amount must not be negative")
	ErrMissingDate     = apperror.Validation("date is required")
	ErrMissingMethod   = apperror.Validation("method is required")
	ErrEmptyMethodName = apperror.Validation("method name is required")
)
