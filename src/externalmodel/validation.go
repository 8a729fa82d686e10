package externalmodel

import (
	"fmt"
	"strings"
)

// ValidationError carries the list of offending fields so the boundary
// can reject a payload with a 400 before any business logic runs.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payload: %s", strings.Join(e.Fields, ", "))
}

func newValidationError(fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
