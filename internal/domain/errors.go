package domain

import "errors"

// Failure taxonomy shared by every component. Services return these wrapped
// with context; the HTTP layer maps them to status codes and decides which
// kinds may be exposed on public routes.
var (
	ErrValidation        = errors.New("missing or malformed required field")
	ErrInvalidTransition = errors.New("action not allowed in current status")
	ErrConflict          = errors.New("lost a concurrent update")
	ErrExpired           = errors.New("expired")
	ErrAlreadyUsed       = errors.New("already used")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrLockedOut         = errors.New("temporarily locked out")
	ErrNotFound          = errors.New("not found")
)
