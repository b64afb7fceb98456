package models

import "fmt"

// ValidationError is returned when a field exceeds its bound or fails a format check
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
