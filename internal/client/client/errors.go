package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

const (
	DefaultRegisterMessage = "Registration failed"
	DefaultLoginMessage    = "Login failed"
)

// AuthRejectedError reports refused credentials or a refused registration.
// Message is safe to show to the user.
type AuthRejectedError struct {
	StatusCode int
	Message    string
}

func (e *AuthRejectedError) Error() string {
	return e.Message
}

// IsAuthRejected reports whether err is, or wraps, an *AuthRejectedError.
func IsAuthRejected(err error) bool {
	var rejected *AuthRejectedError
	return errors.As(err, &rejected)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
