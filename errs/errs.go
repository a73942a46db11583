// Package errs contains sentinel errors shared by the wardrobe packages and
// mapped to HTTP statuses by the controllers.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested item, outfit, upload or session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates rejected user input. No state was changed.
	ErrValidation = errors.New("validation")

	// ErrUploadInProgress indicates a second upload started while one is still being classified.
	ErrUploadInProgress = errors.New("upload in progress")

	// ErrPremiumRequired indicates a premium-gated section was requested without premium.
	ErrPremiumRequired = errors.New("premium required")

	// ErrSessionExpired indicates the API answered 401 and the stored token was cleared.
	ErrSessionExpired = errors.New("session expired")
)

// ValidationError carries a message meant to be shown to the user as is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation builds a user-facing validation error.
func Validation(msg string) error {
	return &ValidationError{Msg: msg}
}
