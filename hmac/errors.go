package hmac

import "errors"

// ErrInvalidInput is the class of errors returned when a request description can't be
// canonicalized; check for it with errors.Is
var ErrInvalidInput = errors.New("invalid input")

var (
	// ErrInvalidURI indicates that the request URI is not a parseable absolute URI
	ErrInvalidURI = &inputError{"invalid uri"}

	// ErrInvalidBody indicates that the request body is not well-formed JSON
	ErrInvalidBody = &inputError{"invalid body"}
)

// ErrVerificationFailed is returned by Verify when a signature does not match
var ErrVerificationFailed = errors.New("verification failed")

// inputError is a sentinel that also matches ErrInvalidInput
type inputError struct {
	message string
}

func (e *inputError) Error() string {
	return e.message
}

func (e *inputError) Is(target error) bool {
	return target == ErrInvalidInput
}
