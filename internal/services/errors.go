package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransport     = errors.New("transport failure")
	ErrStatus        = errors.New("unexpected status")
	ErrDecode        = errors.New("malformed response")
	ErrStorage       = errors.New("storage failure")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err, suitable for the
// error_kind log field.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "unknown"
	}
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
