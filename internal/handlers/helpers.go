package handlers

import (
	"errors"

	"authpanel/internal/services"
)

// isValidationError reports whether err carries a message safe to echo to
// the client with a 400. Anything else becomes a logged 500.
func isValidationError(err error) bool {
	switch {
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrPasswordTooWeak),
		errors.Is(err, services.ErrPasswordsDoNotMatch),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidResetCode):
		return true
	}
	return false
}
