package domain

import "errors"

// Error kinds shared across services. Handlers map these to HTTP statuses with
// errors.Is; services wrap them with fmt.Errorf("%w: ...") to add detail.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrForbidden           = errors.New("forbidden")
	ErrStorage             = errors.New("storage failure")
)
