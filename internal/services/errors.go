package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrUpstream      = errors.New("upstream error")
	ErrStorage       = errors.New("storage error")
	ErrTimeout       = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// PublicError is an error whose message is safe to return to API clients.
type PublicError struct {
	Marker  error
	Message string
}

func (e *PublicError) Error() string {
	return e.Message
}

func (e *PublicError) Unwrap() error {
	return e.Marker
}

// Invalid returns a validation error carrying a client-facing message.
func Invalid(message string) error {
	return &PublicError{Marker: ErrValidation, Message: message}
}

// PublicMessage returns the client-facing message carried by err, if any.
func PublicMessage(err error) (string, bool) {
	var public *PublicError
	if errors.As(err, &public) && strings.TrimSpace(public.Message) != "" {
		return public.Message, true
	}
	return "", false
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
