package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// Error kinds surfaced to HTTP. Wrap them with fmt.Errorf("%w: ...") so the message stays specific.
var (
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

func NotFoundError(resource string, id interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrorRecordNotFound, resource, id)
}

func ConflictError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func ValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
