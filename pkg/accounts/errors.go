package accounts

import "errors"

// Failure modes of the credential lifecycle. Handlers map these onto HTTP
// statuses; anything else coming out of the service is treated as an internal
// error.
var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrEmailTaken            = errors.New("email already exists")
	ErrAlreadyVerified       = errors.New("account is already verified")
	ErrInvalidCode           = errors.New("invalid verification code")
	ErrCodeExpired           = errors.New("verification code has expired")
	ErrAccountNotVerified    = errors.New("account is not verified")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
)

// ValidationError marks missing or malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func newValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
