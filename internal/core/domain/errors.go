package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced by the core unwraps to exactly one of these.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflict         = errors.New("conflict")
	ErrExternalProvider = errors.New("external provider error")
	ErrInternal         = errors.New("internal error")
)

// Error carries a short client-safe message on top of a kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an Error of the given kind.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validationf is shorthand for a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return NewError(ErrValidation, format, args...)
}

var (
	ErrMissingToken       = &Error{Kind: ErrUnauthenticated, Msg: "no token provided"}
	ErrInvalidToken       = &Error{Kind: ErrUnauthenticated, Msg: "invalid token"}
	ErrUnknownAccount     = &Error{Kind: ErrUnauthenticated, Msg: "user not found"}
	ErrNotAuthenticated   = &Error{Kind: ErrUnauthenticated, Msg: "not authenticated"}
	ErrInvalidCredentials = &Error{Kind: ErrUnauthenticated, Msg: "invalid credentials"}

	ErrAccountInactive  = &Error{Kind: ErrForbidden, Msg: "account inactive"}
	ErrInsufficientRole = &Error{Kind: ErrForbidden, Msg: "insufficient permissions"}

	ErrUserNotFound    = &Error{Kind: ErrNotFound, Msg: "user not found"}
	ErrClientNotFound  = &Error{Kind: ErrNotFound, Msg: "client not found"}
	ErrProjectNotFound = &Error{Kind: ErrNotFound, Msg: "project not found"}

	ErrCredentialNotFound = &Error{Kind: ErrNotFound, Msg: "credential not found"}

	ErrUnknownClient = &Error{Kind: ErrValidation, Msg: "clientId does not reference an existing client"}

	ErrUserExists       = &Error{Kind: ErrConflict, Msg: "user already exists"}
	ErrCredentialExists = &Error{Kind: ErrConflict, Msg: "account already registered"}

	ErrSelfDeletion = &Error{Kind: ErrInvalidOperation, Msg: "cannot delete your own account"}
)

// Code returns the stable machine-readable code for err's kind.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidOperation):
		return "INVALID_OPERATION"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrExternalProvider):
		return "EXTERNAL_PROVIDER_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
